package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Security      SecurityConfig      `yaml:"security" envconfig:"SECURITY"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Paths         PathsConfig         `yaml:"paths" envconfig:"PATHS"`
	Processing    ProcessingConfig    `yaml:"processing" envconfig:"PROCESSING"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

// SecurityConfig contains request throttling and origin configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	// AllowedOrigins opens the API and the event stream to browsers on
	// other hosts. Same-host origins are always accepted.
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths. Relative paths hang off BaseDir,
// which defaults to the executable's directory.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// ProcessingConfig holds the defaults applied to merge requests
type ProcessingConfig struct {
	DefaultEntityKey string `yaml:"default_entity_key" envconfig:"DEFAULT_ENTITY_KEY"`
	DefaultMetric    string `yaml:"default_metric" envconfig:"DEFAULT_METRIC"`
	Workers          int    `yaml:"workers" envconfig:"WORKERS"`
}

// ObservabilityConfig selects telemetry exporters
type ObservabilityConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, then an optional YAML file,
// then TSVMERGE_* environment variables. Later sources win.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file; an empty path skips the file
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", path)
		}
	}

	// Unset variables leave fields untouched because no field carries a default tag
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}
	return cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max body bytes must be positive")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive rps and burst")
	}
	if c.Processing.Workers < 0 || c.Processing.Workers > MaxWorkers {
		return fmt.Errorf("processing workers must be between 0 and %d, got %d", MaxWorkers, c.Processing.Workers)
	}
	if strings.TrimSpace(c.Processing.DefaultEntityKey) == "" {
		return fmt.Errorf("processing default entity key must not be blank")
	}
	if strings.TrimSpace(c.Processing.DefaultMetric) == "" {
		return fmt.Errorf("processing default metric must not be blank")
	}
	switch c.Observability.TraceExporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %q", c.Observability.TraceExporter)
	}

	// JSON is the only structured format the logger emits
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = DefaultLogFormat
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}
	return nil
}

// getConfigFilePath returns the config file to load, or "" when there is none
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"tsvmerge.yaml",
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/tsvmerge.log",
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ReportsDir: DefaultReportsDir,
			LogsDir:    DefaultLogsDir,
		},
		Processing: ProcessingConfig{
			DefaultEntityKey: DefaultEntityKey,
			DefaultMetric:    DefaultMetric,
			Workers:          DefaultWorkers,
		},
		Observability: ObservabilityConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}

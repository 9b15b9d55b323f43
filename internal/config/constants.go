package config

import "time"

// Application constants
const (
	AppName    = "tsvmerge"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. TSVMERGE_SERVER_PORT
	EnvPrefix = "TSVMERGE"

	// ConfigFileEnv names an explicit YAML config file
	ConfigFileEnv = "TSVMERGE_CONFIG"

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"
	DefaultLogsDir    = "logs"

	// Processing
	DefaultEntityKey = "Peptide"
	DefaultMetric    = "Count"
	DefaultWorkers   = 1
	MaxWorkers       = 64

	// Document extensions picked up from a group folder
	DocumentExtension = ".tsv"

	// Server
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 2 * time.Minute
	DefaultMaxBodyBytes    = 1 << 20

	// Rate Limiting
	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultEntityKey, cfg.Processing.DefaultEntityKey)
	assert.Equal(t, DefaultMetric, cfg.Processing.DefaultMetric)
	assert.Equal(t, DefaultWorkers, cfg.Processing.Workers)
	assert.Equal(t, AppName, cfg.Observability.ServiceName)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	require.NoError(t, cfg.validate())
}

func TestLoadFile_NoFile(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsvmerge.yaml")
	content := `
server:
  port: 9090
  read_timeout: 5s
processing:
  default_metric: Intensity
  workers: 4
paths:
  base_dir: /srv/tsv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "Intensity", cfg.Processing.DefaultMetric)
	assert.Equal(t, 4, cfg.Processing.Workers)
	assert.Equal(t, "/srv/tsv", cfg.Paths.BaseDir)

	// untouched keys keep their defaults
	assert.Equal(t, DefaultEntityKey, cfg.Processing.DefaultEntityKey)
	assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout)
}

func TestLoadFile_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsvmerge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("TSVMERGE_SERVER_PORT", "7070")
	t.Setenv("TSVMERGE_PROCESSING_DEFAULT_ENTITY_KEY", "Sequence")
	t.Setenv("TSVMERGE_LOGGING_LEVEL", "debug")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "Sequence", cfg.Processing.DefaultEntityKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.yaml")
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config from file")

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
		assert.Equal(t, path, appErr.Context["path"])
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))
		_, err := LoadFile(path)
		require.Error(t, err)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("TSVMERGE_PROCESSING_WORKERS", "many")
		_, err := LoadFile("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config from env")
	})
}

func TestLoad_ExplicitConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processing:\n  workers: 8\n"), 0644))
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Processing.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"write timeout", func(c *Config) { c.Server.WriteTimeout = -1 }, "write timeout"},
		{"body size", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "max body bytes"},
		{"rate limit", func(c *Config) { c.Security.RateLimit.RPS = 0 }, "rate limit"},
		{"negative workers", func(c *Config) { c.Processing.Workers = -1 }, "workers"},
		{"too many workers", func(c *Config) { c.Processing.Workers = MaxWorkers + 1 }, "workers"},
		{"blank entity key", func(c *Config) { c.Processing.DefaultEntityKey = "  " }, "entity key"},
		{"blank metric", func(c *Config) { c.Processing.DefaultMetric = "" }, "metric"},
		{"trace exporter", func(c *Config) { c.Observability.TraceExporter = "jaeger" }, "trace exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.Output = "syslog"
	cfg.Security.RateLimit = RateLimitConfig{Enabled: false}

	require.NoError(t, cfg.validate())
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "goeda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.UsesDatabase())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Analysis.HistoryLimit)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	content := `
server:
  port: "9090"
  gin_mode: debug
logging:
  level: debug
  format: console
analysis:
  batch_concurrency: 2
`
	path := filepath.Join(t.TempDir(), "goeda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("GOEDA_ANALYSIS_BATCH_CONCURRENCY", "8")
	t.Setenv("DATABASE_URL", "postgres://localhost/goeda?sslmode=disable")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 8, cfg.Analysis.BatchConcurrency)
	assert.True(t, cfg.UsesDatabase())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080", GinMode: "release", ReadTimeout: time.Minute},
			Database: DatabaseConfig{MaxOpenConns: 1},
			Logging:  LoggingConfig{Level: "info", Format: "json"},
			Analysis: AnalysisConfig{MaxUploadMB: 1, HistoryLimit: 1, BatchConcurrency: 1},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"bad gin mode", func(c *Config) { c.Server.GinMode = "loud" }},
		{"short timeout", func(c *Config) { c.Server.ReadTimeout = time.Millisecond }},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"zero history", func(c *Config) { c.Analysis.HistoryLimit = 0 }},
		{"zero concurrency", func(c *Config) { c.Analysis.BatchConcurrency = 0 }},
		{"negative sample", func(c *Config) { c.Analysis.SampleRows = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
		})
	}
}

package config

import (
	"os"
	"strings"
	"time"

	"goeda/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. GOEDA_SERVER_PORT
const EnvPrefix = "GOEDA"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string        `mapstructure:"port"`
	GinMode     string        `mapstructure:"gin_mode"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory repository.
type DatabaseConfig struct {
	URL           string `mapstructure:"url"`
	MaxOpenConns  int    `mapstructure:"max_open_conns"`
	RunMigrations bool   `mapstructure:"run_migrations"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalysisConfig holds dataset processing settings
type AnalysisConfig struct {
	MaxUploadMB      int `mapstructure:"max_upload_mb"`
	HistoryLimit     int `mapstructure:"history_limit"`
	BatchConcurrency int `mapstructure:"batch_concurrency"`
	// SampleRows caps the rows read from a file (0 = all)
	SampleRows int `mapstructure:"sample_rows"`
}

// UsesDatabase reports whether a Postgres URL is configured
func (c *Config) UsesDatabase() bool {
	return c.Database.URL != ""
}

// MaxUploadBytes converts the upload limit to bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Analysis.MaxUploadMB) << 20
}

// Load reads .env (when present), an optional config file named by
// GOEDA_CONFIG, and GOEDA_* environment variables, then validates
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}
	return LoadFrom(os.Getenv(EnvPrefix + "_CONFIG"))
}

// LoadFrom builds the configuration from defaults, the given config file
// (skipped when path is empty) and the environment
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DATABASE_URL is the conventional name and is honoured as a fallback
	if err := v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, errors.Wrap(err, "failed to bind database url")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to read config file %s", path))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to unmarshal config"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.read_timeout", "30s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.run_migrations", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("analysis.max_upload_mb", 50)
	v.SetDefault("analysis.history_limit", 50)
	v.SetDefault("analysis.batch_concurrency", 4)
	v.SetDefault("analysis.sample_rows", 0)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("server.port is required")
	}
	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.GinMode] {
		return errors.ConfigInvalid("server.gin_mode must be one of: debug, release, test")
	}
	if c.Server.ReadTimeout < time.Second {
		return errors.ConfigInvalid("server.read_timeout must be at least 1s")
	}

	if c.Database.MaxOpenConns < 1 {
		return errors.ConfigInvalid("database.max_open_conns must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return errors.ConfigInvalid("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		return errors.ConfigInvalid("logging.format must be one of: json, console")
	}

	if c.Analysis.MaxUploadMB < 1 {
		return errors.ConfigInvalid("analysis.max_upload_mb must be at least 1")
	}
	if c.Analysis.HistoryLimit < 1 {
		return errors.ConfigInvalid("analysis.history_limit must be at least 1")
	}
	if c.Analysis.BatchConcurrency < 1 {
		return errors.ConfigInvalid("analysis.batch_concurrency must be at least 1")
	}
	if c.Analysis.SampleRows < 0 {
		return errors.ConfigInvalid("analysis.sample_rows cannot be negative")
	}
	return nil
}

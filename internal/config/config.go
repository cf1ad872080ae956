package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is process-level configuration, populated from the
// environment.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// SaveBackend selects where serialized engine state lives:
	// "redis" or "sqlite".
	SaveBackend string `env:"SAVE_BACKEND" envDefault:"redis"`
	RedisURL    string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./narrative.db"`

	// DataDir holds the static content catalogs (drama and interview
	// templates) and tuning.yaml.
	DataDir    string `env:"DATA_DIR" envDefault:"./data"`
	TuningPath string `env:"TUNING_PATH" envDefault:"./data/tuning.yaml"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SlogLevel converts the configured log level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

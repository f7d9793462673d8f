// Package config reads host configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries everything the hosts need that is not game content.
// All values come from the environment so the same binary can run against
// a local in-memory store or a shared Redis without code changes.
type Config struct {
	// RedisAddr selects the Redis session store when non-empty.
	// Left empty, sessions live in process memory for the run.
	RedisAddr string `env:"REDIS_ADDR"`

	// SessionTTL bounds how long an idle session survives in Redis.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// Environment switches log output format. "production" logs JSON,
	// anything else logs text.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	LogLevelName string `env:"LOG_LEVEL" envDefault:"info"`

	// SaveDir is where /save and /load keep their snapshot files.
	SaveDir string `env:"SAVE_DIR" envDefault:"saves"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// LogLevel converts the configured level name to a slog.Level.
// Unknown names fall back to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.LogLevelName) {
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

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string        `env:"PORT"         envDefault:"8080"`
	Environment string        `env:"ENVIRONMENT"  envDefault:"development"`
	LogLevelRaw string        `env:"LOG_LEVEL"    envDefault:"info"`
	RedisURL    string        `env:"REDIS_URL"` // empty keeps saves in memory
	ContentPath string        `env:"CONTENT_PATH" envDefault:"./data/scenarios/cellar.yaml"`
	SaveTTL     time.Duration `env:"SAVE_TTL"     envDefault:"168h"`

	LogLevel slog.Level `env:"-"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	return &cfg, nil
}

// IsProduction reports whether logs should be machine readable.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

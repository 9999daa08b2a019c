package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the worklens backend.
// Environment variables are parsed from the WORKLENS_ prefix, e.g.
// WORKLENS_HTTP_PORT, WORKLENS_DB_DRIVER.
type Config struct {
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// DBDriver selects the docstore driver: memory, sqlite or postgres.
	DBDriver    string `envconfig:"DB_DRIVER" default:"memory"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/worklens.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// TZOffsetHours is the operating timezone as a fixed UTC offset.
	TZOffsetHours int `envconfig:"TZ_OFFSET_HOURS" default:"9"`

	// Advice queue business-hours window, local hours [start, end).
	AdviceWindowStartHour int `envconfig:"ADVICE_WINDOW_START_HOUR" default:"9"`
	AdviceWindowEndHour   int `envconfig:"ADVICE_WINDOW_END_HOUR" default:"18"`

	// MaxSubtaskDepth bounds the recursive subtree fetch.
	MaxSubtaskDepth int `envconfig:"MAX_SUBTASK_DEPTH" default:"3"`
}

// ResolveDefaults validates driver and window settings.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required with DB_DRIVER=postgres")
	}
	if c.AdviceWindowStartHour < 0 || c.AdviceWindowEndHour > 24 ||
		c.AdviceWindowStartHour >= c.AdviceWindowEndHour {
		return fmt.Errorf("invalid advice window [%d, %d)", c.AdviceWindowStartHour, c.AdviceWindowEndHour)
	}
	if c.MaxSubtaskDepth < 1 {
		return fmt.Errorf("MAX_SUBTASK_DEPTH must be at least 1")
	}
	return nil
}

// New creates a Config by parsing environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("WORKLENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Int("tz_offset_hours", cfg.TZOffsetHours).
		Int("advice_window_start", cfg.AdviceWindowStartHour).
		Int("advice_window_end", cfg.AdviceWindowEndHour).
		Int("max_subtask_depth", cfg.MaxSubtaskDepth).
		Msg("Configuration loaded")

	return &cfg, nil
}

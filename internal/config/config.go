// Package config loads dragsort runtime configuration from the environment.
//
// Flags on the serve and play commands override whatever the environment
// provides; the environment overrides the envDefault tags below.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServeConfig configures the HTTP and websocket server.
type ServeConfig struct {
	Addr            string        `env:"DRAGSORT_ADDR"             envDefault:":8080"`
	DBPath          string        `env:"DRAGSORT_DB"               envDefault:"dragsort.db"`
	CompletionDelay time.Duration `env:"DRAGSORT_COMPLETION_DELAY" envDefault:"500ms"`
	LogLevel        slog.Level    `env:"DRAGSORT_LOG_LEVEL"        envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServeConfig reads ServeConfig from the environment and validates it.
func LoadServeConfig() (ServeConfig, error) {
	var cfg ServeConfig
	if err := ParseEnv(&cfg); err != nil {
		return ServeConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return ServeConfig{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c ServeConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.CompletionDelay < 0 {
		return fmt.Errorf("completion delay must not be negative, got %s", c.CompletionDelay)
	}
	return nil
}

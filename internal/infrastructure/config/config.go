// Package config provides 12-factor configuration for the shell host.
//
// Configuration is loaded from environment variables with sensible
// defaults, so a bare `shell` invocation serves apps out of the user's
// local app directory.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all host configuration.
type Config struct {
	Server    ServerConfig
	Apps      AppsConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Focus     FocusConfig
}

// ServerConfig holds control API server settings.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8090"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// AppsConfig holds app discovery and lifecycle settings.
type AppsConfig struct {
	Root             string        `envconfig:"APPS_ROOT" default:"~/.local/share/shell/apps"`
	DiscoveryTimeout time.Duration `envconfig:"APPS_DISCOVERY_TIMEOUT" default:"5s"`
	PerInstanceMB    float64       `envconfig:"APPS_PER_INSTANCE_MB" default:"96"`
	BaselineMB       float64       `envconfig:"APPS_BASELINE_MB" default:"64"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds per-IP rate limiting for the control API.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// FocusConfig holds focus coordinator tuning.
type FocusConfig struct {
	HistorySize int `envconfig:"FOCUS_HISTORY_SIZE" default:"16"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8090",
			Host: "127.0.0.1",
		},
		Apps: AppsConfig{
			Root:             "~/.local/share/shell/apps",
			DiscoveryTimeout: 5 * time.Second,
			PerInstanceMB:    96,
			BaselineMB:       64,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Focus: FocusConfig{
			HistorySize: 16,
		},
	}
}

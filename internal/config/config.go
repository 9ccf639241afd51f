// Package config loads the SDK configuration from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings the tracking core needs at startup.
// Flush scheduling and network settings belong to the upload collaborator
// and are not modeled here.
type Config struct {
	// ProjectToken identifies the project every buffered record belongs to.
	ProjectToken string `yaml:"project_token"`

	// Database is the path to the local SQLite buffer.
	Database string `yaml:"database"`

	// LogLevel controls diagnostic verbosity: debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Database: "spool.db",
		LogLevel: "info",
	}
}

// Load reads and parses a YAML configuration file, applying defaults for
// absent keys.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration bytes, applying defaults for absent keys.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate rejects values the tracker cannot run with.
func (c Config) validate() error {
	if c.Database == "" {
		return fmt.Errorf("config: database path must not be empty")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured log level onto slog.
func (c Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
}

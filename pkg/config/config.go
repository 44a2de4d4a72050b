package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/flowstate/flowstate/pkg/telemetry"
)

// Config is the top-level flowstate configuration.
type Config struct {
	// Logging configures structured logging.
	Logging telemetry.LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics telemetry.MetricsConfig `yaml:"metrics"`

	// Store configures the state store.
	Store StoreConfig `yaml:"store"`

	// Results configures result payload handling.
	Results ResultsConfig `yaml:"results"`
}

// StoreConfig configures the SQLite state store.
type StoreConfig struct {
	// Path is the database file path.
	Path string `yaml:"path" validate:"required"`
}

// ResultsConfig selects the result handler applied to opaque payloads.
type ResultsConfig struct {
	// Handler names the result handler: none, json, gob, or local.
	Handler string `yaml:"handler" validate:"omitempty,oneof=none json gob local"`

	// Dir is the payload directory for the local handler.
	Dir string `yaml:"dir" validate:"required_if=Handler local"`
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{
		Store:   StoreConfig{Path: "flowstate.db"},
		Results: ResultsConfig{Handler: "none"},
	}
	cfg.Logging.ApplyDefaults()
	cfg.Metrics.ApplyDefaults()
	return cfg
}

// Load reads and validates a YAML configuration file. Fields absent from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Logging.ApplyDefaults()
	cfg.Metrics.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.Metrics.Validate()
}

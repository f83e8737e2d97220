package tempora

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes the in-memory engine. The zero value is usable; New fills
// missing fields with defaults.
type Config struct {
	// SeriesCapacityHint is the initial point capacity allocated per series.
	// Default: 64.
	SeriesCapacityHint int `yaml:"series_capacity_hint"`

	// MaxResults caps query results when the query itself sets no limit.
	// 0 means unlimited.
	MaxResults int `yaml:"max_results"`

	// Logging configures diagnostic logging.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls the engine's diagnostic log output.
type LoggingConfig struct {
	// Enabled turns on logging of series lifecycle events. Disabled by
	// default; the engine is silent as a library should be.
	Enabled bool `yaml:"enabled"`

	// Level is the minimum level: "debug", "info", "warn", or "error".
	// Default: "debug", since everything the engine logs is diagnostic.
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SeriesCapacityHint: 64,
		MaxResults:         0,
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "debug",
		},
	}
}

func (c *Config) normalize() {
	if c.SeriesCapacityHint <= 0 {
		c.SeriesCapacityHint = 64
	}
	if c.MaxResults < 0 {
		c.MaxResults = 0
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
}

// LoadConfig reads a YAML config file. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c LoggingConfig) logger() *slog.Logger {
	if !c.Enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: c.slogLevel(),
	}))
}

func (c LoggingConfig) slogLevel() slog.Level {
	switch c.Level {
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

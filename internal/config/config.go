package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the settings read from the YAML config file.
type Config struct {
	DatabasePath    string        `yaml:"database_path"`
	LogPath         string        `yaml:"log_path"`
	LogLevel        string        `yaml:"log_level"`
	TickInterval    time.Duration `yaml:"tick_interval"`
	DefaultDuration time.Duration `yaml:"default_duration"`
}

func Default() Config {
	return Config{
		DatabasePath:    "countdown_tui.db",
		LogPath:         "countdown_tui.log",
		LogLevel:        "info",
		TickInterval:    time.Second,
		DefaultDuration: 25 * time.Minute,
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("database_path is empty")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("default_duration must be positive, got %s", c.DefaultDuration)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

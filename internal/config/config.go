package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server and logging settings.
type Config struct {
	Addr             string        `yaml:"addr"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
	Heartbeat        time.Duration `yaml:"heartbeat"`
	SubscriberBuffer int           `yaml:"subscriber_buffer"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Addr:             ":8080",
		LogLevel:         "info",
		LogFormat:        "console",
		Heartbeat:        15 * time.Second,
		SubscriberBuffer: 8,
	}
}

// Load reads the YAML file at path (optional) on top of the defaults and
// then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	if v := os.Getenv("TICTACTOE_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("TICTACTOE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TICTACTOE_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q: want console or json", c.LogFormat))
	}
	if c.Heartbeat <= 0 {
		errs = append(errs, fmt.Errorf("heartbeat must be positive, got %s", c.Heartbeat))
	}
	if c.SubscriberBuffer < 1 {
		errs = append(errs, fmt.Errorf("subscriber_buffer must be at least 1, got %d", c.SubscriberBuffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	EnvLogLevel = "ECSL_LOG_LEVEL"
	EnvTicks    = "ECSL_TICKS"

	DefaultTicks = 10
)

// Config holds the settings shared by the commands.  Values are taken, in
// increasing order of precedence, from the defaults, the YAML config file,
// the environment and the command line flags.
type Config struct {
	LogLevel        string `yaml:"log_level"` // Empty keeps the current level
	Ticks           int    `yaml:"ticks"`
	ContinueOnError bool   `yaml:"continue_on_error"`
}

func DefaultConfig() Config {
	return Config{Ticks: DefaultTicks}
}

// LoadConfig reads the config file at path (if not empty) and applies the
// environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := decodeConfig(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}
	if ticks := os.Getenv(EnvTicks); ticks != "" {
		n, err := strconv.Atoi(ticks)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvTicks, err)
		}
		cfg.Ticks = n
	}
	return cfg, cfg.Validate()
}

// Unknown keys are rejected so typos do not go unnoticed.
func decodeConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	if c.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative, got %d", c.Ticks)
	}
	return nil
}

// Package config loads the viewctl configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/viewengine/viewctl/internal/lifecycle"
)

// DefaultBaseURL is the production ViewEngine endpoint.
const DefaultBaseURL = "https://www.viewengine.io"

// Config holds everything the client needs beyond the API key. It is
// constructed once and passed into component constructors; there is no
// process-wide singleton.
type Config struct {
	// BaseURL is the service endpoint, without a trailing slash.
	BaseURL string `yaml:"base_url"`
	// TimeoutSeconds is the server-side retrieval timeout sent with
	// each submission.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// Poll tunes the status poll loop.
	Poll PollConfig `yaml:"poll"`
}

// PollConfig mirrors lifecycle.Policy in file-friendly units.
type PollConfig struct {
	IntervalSeconds       int `yaml:"interval_seconds"`
	MaxAttempts           int `yaml:"max_attempts"`
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// DefaultConfig returns the defaults the service demo assumes.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		TimeoutSeconds: 60,
		Poll: PollConfig{
			IntervalSeconds:       2,
			MaxAttempts:           60,
			RequestTimeoutSeconds: 10,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	if c.Poll.IntervalSeconds < 0 {
		return fmt.Errorf("poll.interval_seconds must not be negative")
	}
	if c.Poll.MaxAttempts < 1 {
		return fmt.Errorf("poll.max_attempts must be at least 1")
	}
	return nil
}

// PollPolicy converts the file representation into a lifecycle.Policy.
func (c *Config) PollPolicy() lifecycle.Policy {
	return lifecycle.Policy{
		Interval:       time.Duration(c.Poll.IntervalSeconds) * time.Second,
		MaxAttempts:    c.Poll.MaxAttempts,
		RequestTimeout: time.Duration(c.Poll.RequestTimeoutSeconds) * time.Second,
	}
}

// RequestTimeout returns the per-request transport timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Poll.RequestTimeoutSeconds) * time.Second
}

// LoadConfig loads configuration from a YAML file. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromHome loads configuration from ~/.viewctl/config.yaml.
func LoadConfigFromHome() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(filepath.Join(home, ".viewctl", "config.yaml"))
}

// SaveConfig saves configuration to a YAML file, creating parent
// directories if needed.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

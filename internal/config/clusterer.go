package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

const (
	EnvClustererBaseURL = "PILOT_CLUSTERER_BASE_URL"
	EnvClustererTimeout = "PILOT_CLUSTERER_TIMEOUT"
)

// ClustererConfig holds the connection parameters for the external
// similarity-clustering service that computes submission versions.
type ClustererConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ClustererConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClustererConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ClustererConfig) Merge(overlay *ClustererConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *ClustererConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:9090"
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *ClustererConfig) loadEnv() {
	if v := os.Getenv(EnvClustererBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvClustererTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *ClustererConfig) validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

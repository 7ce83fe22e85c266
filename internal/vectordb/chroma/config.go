package chroma

import (
	"fmt"
	"time"
)

// Config holds connection settings for a ChromaDB server.
type Config struct {
	Host      string        `yaml:"host" json:"host"`
	Port      int           `yaml:"port" json:"port"`
	UseTLS    bool          `yaml:"use_tls" json:"use_tls"`
	AuthToken string        `yaml:"auth_token" json:"auth_token"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns settings for a local ChromaDB instance.
func DefaultConfig() *Config {
	return &Config{
		Host:    "localhost",
		Port:    8000,
		UseTLS:  false,
		Timeout: 30 * time.Second,
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// GetHTTPURL builds the base URL for the ChromaDB HTTP API.
func (c *Config) GetHTTPURL() string {
	scheme := "http"
	if c.UseTLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v9"

	"feecalc/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// RateLimit contains contact rate limiter configuration
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Contact contains contact form configuration
	Contact ContactConfig `json:"contact"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" env:"FEECALC_ADDR"`

	// UIDir is the directory served as the browser UI
	UIDir string `json:"ui_dir" env:"FEECALC_UI_DIR"`

	// ReadTimeoutSeconds bounds request reads
	ReadTimeoutSeconds int `json:"read_timeout_seconds" env:"FEECALC_READ_TIMEOUT_SECONDS"`

	// ShutdownTimeoutSeconds bounds graceful shutdown
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" env:"FEECALC_SHUTDOWN_TIMEOUT_SECONDS"`
}

// RateLimitConfig contains contact rate limiter settings
type RateLimitConfig struct {
	// Enabled enables rate limiting on the contact endpoint
	Enabled bool `json:"enabled" env:"FEECALC_RATELIMIT_ENABLED"`

	// RedisAddr is the Redis address; empty falls back to in-memory counters
	RedisAddr string `json:"redis_addr" env:"FEECALC_REDIS_ADDR"`

	// RedisPassword is the Redis password
	RedisPassword string `json:"redis_password" env:"FEECALC_REDIS_PASSWORD"`

	// RedisDB is the Redis database index
	RedisDB int `json:"redis_db" env:"FEECALC_REDIS_DB"`

	// WindowSeconds is the fixed counting window
	WindowSeconds int `json:"window_seconds" env:"FEECALC_RATELIMIT_WINDOW_SECONDS"`

	// MaxRequests is the allowed submissions per window per client
	MaxRequests int `json:"max_requests" env:"FEECALC_RATELIMIT_MAX_REQUESTS"`
}

// ContactConfig contains contact form settings
type ContactConfig struct {
	// Recipient receives forwarded contact messages
	Recipient string `json:"recipient" env:"FEECALC_CONTACT_RECIPIENT"`

	// MaxMessageLen caps the accepted message body length
	MaxMessageLen int `json:"max_message_len" env:"FEECALC_CONTACT_MAX_MESSAGE_LEN"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" env:"FEECALC_FORMAT"`

	// ShowMeta shows resolved rates and suggested charge lines
	ShowMeta bool `json:"show_meta"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr:                   ":8080",
			UIDir:                  "./ui",
			ReadTimeoutSeconds:     15,
			ShutdownTimeoutSeconds: 10,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			RedisAddr:     "",
			WindowSeconds: 3600,
			MaxRequests:   5,
		},
		Contact: ContactConfig{
			MaxMessageLen: 4000,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowMeta:      true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the default configuration file location
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".feecalc", "config.json")
}

// Load loads configuration from a file, then applies environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := env.Parse(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}

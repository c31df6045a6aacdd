package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultMaxInputBytes  = 64 << 20
	DefaultMaxUploadBytes = 16 << 20
	DefaultServerAddr     = ":8080"
	DefaultReadTimeout    = 30 * time.Second
	DefaultWebhookTimeout = 10 * time.Second
	DefaultOutputFormat   = "text"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Environment variable names.
const (
	EnvSelf      = "CHATLOG_SELF"
	EnvStorePath = "CHATLOG_STORE_PATH"
	EnvLogLevel  = "CHATLOG_LOG_LEVEL"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxInputBytes: DefaultMaxInputBytes,
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
			ReadTimeout:    DefaultReadTimeout,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if self := os.Getenv(EnvSelf); self != "" {
		c.Self = self
	}
	if path := os.Getenv(EnvStorePath); path != "" {
		c.Store.Path = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}

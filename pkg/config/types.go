// Package config provides configuration loading and validation for chatlog.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
// Every section is optional.
type Config struct {
	// Exports lists export files or glob patterns to parse when none are
	// given on the command line.
	Exports []string `yaml:"exports,omitempty"`

	// Self is the sender displayed on the right. Defaults to the first
	// sender of each conversation.
	Self string `yaml:"self,omitempty"`

	// MaxInputBytes bounds the size of a single export.
	MaxInputBytes int64 `yaml:"max_input_bytes,omitempty"`

	Output   OutputConfig    `yaml:"output"`
	Store    StoreConfig     `yaml:"store"`
	Server   ServerConfig    `yaml:"server"`
	Logging  LoggingConfig   `yaml:"logging"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// OutputConfig controls how reports are rendered.
type OutputConfig struct {
	// Format is "text" or "json".
	Format  string `yaml:"format"`
	Verbose bool   `yaml:"verbose,omitempty"`
	Quiet   bool   `yaml:"quiet,omitempty"`
}

// StoreConfig configures the SQLite archive.
type StoreConfig struct {
	// Path is the database file. Empty disables archiving.
	Path string `yaml:"path,omitempty"`
}

// ServerConfig configures the HTTP upload endpoint.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes,omitempty"`
	ReadTimeout    time.Duration `yaml:"read_timeout,omitempty"`
}

// LoggingConfig configures diagnostic logging on stderr.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnMessages fires only when messages were found (default).
	WebhookTriggerOnMessages WebhookTrigger = "on_messages"
	// WebhookTriggerAlways fires after every parse, including empty ones.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines an endpoint that receives parsed conversations.
type WebhookConfig struct {
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. "$VAR" and "${VAR}" are expanded.
	Token string `yaml:"token,omitempty"`

	Trigger WebhookTrigger `yaml:"trigger,omitempty"`
	Timeout time.Duration  `yaml:"timeout,omitempty"`
}

// DisplayName returns the webhook name, falling back to its URL.
func (w WebhookConfig) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.URL
}

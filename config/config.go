// Package config provides configuration loading and management for the
// compliance service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration.
type Config struct {
	Oracle OracleConfig `yaml:"oracle"`
	HTTP   HTTPConfig   `yaml:"http"`
	Events EventsConfig `yaml:"events"`
	Queue  QueueConfig  `yaml:"queue"`
}

// OracleConfig configures the reasoning oracle endpoints.
type OracleConfig struct {
	// Endpoints is the fallback chain, tried in order.
	Endpoints []EndpointConfig `yaml:"endpoints"`
	// Temperature controls randomness (0.0-1.0, default: 0.2)
	Temperature float64 `yaml:"temperature"`
	// MaxTokens limits response length (0 = endpoint default)
	MaxTokens int `yaml:"max_tokens"`
	// Timeout is the maximum time to wait for oracle responses
	Timeout time.Duration `yaml:"timeout"`
}

// EndpointConfig describes one oracle endpoint.
type EndpointConfig struct {
	// Name identifies the endpoint in logs
	Name string `yaml:"name"`
	// Provider selects the adapter: "openai", "anthropic", or "ollama"
	Provider string `yaml:"provider"`
	// URL is the base URL (empty = provider default)
	URL string `yaml:"url"`
	// Model is the model identifier
	Model string `yaml:"model"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	// Addr is the listen address (default: :8086)
	Addr string `yaml:"addr"`
}

// EventsConfig configures the audit event API collaborator.
type EventsConfig struct {
	// BaseURL of the event API (empty = event logging disabled)
	BaseURL string `yaml:"base_url"`
	// ClientID for the OAuth client-credentials grant
	ClientID string `yaml:"client_id"`
	// ClientSecret for the OAuth client-credentials grant
	ClientSecret string `yaml:"client_secret"`
}

// QueueConfig configures spec-update publication and analysis storage.
type QueueConfig struct {
	// NATSURL is the broker URL (empty = degraded local-only mode)
	NATSURL string `yaml:"nats_url"`
	// Subject is the JetStream subject for spec updates
	Subject string `yaml:"subject"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Endpoints: []EndpointConfig{
				{
					Name:     "default",
					Provider: "ollama",
					URL:      "http://localhost:11434/v1",
					Model:    "qwen2.5:32b",
				},
			},
			Temperature: 0.2,
			Timeout:     3 * time.Minute,
		},
		HTTP: HTTPConfig{
			Addr: ":8086",
		},
		Queue: QueueConfig{
			Subject: "compliance.spec-updates",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Oracle.Endpoints) == 0 {
		return fmt.Errorf("oracle.endpoints is required")
	}
	for i, ep := range c.Oracle.Endpoints {
		if ep.Provider == "" {
			return fmt.Errorf("oracle.endpoints[%d].provider is required", i)
		}
		if ep.Model == "" {
			return fmt.Errorf("oracle.endpoints[%d].model is required", i)
		}
	}
	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 1 {
		return fmt.Errorf("oracle.temperature must be between 0 and 1")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.Events.BaseURL != "" && (c.Events.ClientID == "" || c.Events.ClientSecret == "") {
		return fmt.Errorf("events.client_id and events.client_secret are required when events.base_url is set")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Oracle.Endpoints) > 0 {
		c.Oracle.Endpoints = other.Oracle.Endpoints
	}
	if other.Oracle.Temperature != 0 {
		c.Oracle.Temperature = other.Oracle.Temperature
	}
	if other.Oracle.MaxTokens != 0 {
		c.Oracle.MaxTokens = other.Oracle.MaxTokens
	}
	if other.Oracle.Timeout != 0 {
		c.Oracle.Timeout = other.Oracle.Timeout
	}

	if other.HTTP.Addr != "" {
		c.HTTP.Addr = other.HTTP.Addr
	}

	if other.Events.BaseURL != "" {
		c.Events.BaseURL = other.Events.BaseURL
	}
	if other.Events.ClientID != "" {
		c.Events.ClientID = other.Events.ClientID
	}
	if other.Events.ClientSecret != "" {
		c.Events.ClientSecret = other.Events.ClientSecret
	}

	if other.Queue.NATSURL != "" {
		c.Queue.NATSURL = other.Queue.NATSURL
	}
	if other.Queue.Subject != "" {
		c.Queue.Subject = other.Queue.Subject
	}
}

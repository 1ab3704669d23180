// Package config provides configuration management for the awqat daemon.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigDir returns the default config directory (~/.awqat).
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".awqat"), nil
}

// DefaultConfigPath returns the default config file path (~/.awqat/config.yml).
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// Config holds the daemon's configuration.
type Config struct {
	// ProviderURL is the base URL of the remote prayer-data provider.
	ProviderURL string `yaml:"provider_url,omitempty"`
	// ProviderEmail and ProviderPassword authenticate against the provider.
	ProviderEmail    string `yaml:"provider_email,omitempty"`
	ProviderPassword string `yaml:"provider_password,omitempty"`
	// GeocoderURL is the base URL of the reverse geocoding service.
	GeocoderURL string `yaml:"geocoder_url,omitempty"`
	// DataDir is where the local cache database lives. Defaults to the
	// config directory when empty.
	DataDir string `yaml:"data_dir,omitempty"`
	// ListenAddr is the admin API listen address (default 127.0.0.1:8632).
	ListenAddr string `yaml:"listen_addr,omitempty"`
	// NotifyWebhookURL receives a POST whenever a prayer alarm fires.
	NotifyWebhookURL string `yaml:"notify_webhook_url,omitempty"`
	// LocationPollInterval is the period of the location refresh timer.
	LocationPollInterval time.Duration `yaml:"location_poll_interval,omitempty"`
}

// DefaultListenAddr is used when no listen address is configured.
const DefaultListenAddr = "127.0.0.1:8632"

// DefaultLocationPollInterval is the period of the location refresh timer.
const DefaultLocationPollInterval = 60 * time.Second

// Validate checks that the configuration has required fields for operation.
func (c *Config) Validate() error {
	if c.ProviderURL == "" {
		return errors.New("provider_url is required")
	}
	return nil
}

// IsConfigured returns true if the daemon has a provider to sync from.
func (c *Config) IsConfigured() bool {
	return c.ProviderURL != ""
}

// Listen returns the configured listen address or the default.
func (c *Config) Listen() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// PollInterval returns the configured location poll interval or the default.
func (c *Config) PollInterval() time.Duration {
	if c.LocationPollInterval <= 0 {
		return DefaultLocationPollInterval
	}
	return c.LocationPollInterval
}

// Load reads the configuration from the given path.
// If the file does not exist, an empty config is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads the configuration from the default path.
func LoadDefault() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the configuration to the given path, creating directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Credentials live in this file, keep it user-only.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// SaveDefault saves the configuration to the default path.
func (c *Config) SaveDefault() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.Save(path)
}

// ResolveDataDir returns the effective data directory, falling back to the
// config directory.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return DefaultConfigDir()
}

// Package config provides YAML-based configuration for the webmint CLI:
// provider credentials, deployment policy, generation service, and local
// history storage.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted when the config file omits secrets.
const (
	EnvAPIToken      = "WEBMINT_API_TOKEN"
	EnvAccountID     = "WEBMINT_ACCOUNT_ID"
	EnvGenerationKey = "WEBMINT_GENERATION_KEY"
)

// Sentinel errors for configuration validation.
var (
	ErrAccountIDRequired     = errors.New("provider account_id is required")
	ErrAPITokenRequired      = errors.New("provider api_token is required (set api_token or WEBMINT_API_TOKEN)")
	ErrInvalidTimeout        = errors.New("provider timeout must be a valid duration")
	ErrGenerationURLRequired = errors.New("generation base_url is required when generation is enabled")
)

// Config is the top-level configuration structure.
type Config struct {
	Version    string           `yaml:"version"`
	Provider   ProviderConfig   `yaml:"provider"`
	Deploy     DeployConfig     `yaml:"deploy"`
	Generation GenerationConfig `yaml:"generation"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ProviderConfig configures the static-hosting provider client.
type ProviderConfig struct {
	BaseURL   string `yaml:"base_url"`
	AccountID string `yaml:"account_id"`
	APIToken  string `yaml:"api_token"`
	UserAgent string `yaml:"user_agent"`
	Timeout   string `yaml:"timeout"`
}

// GetTimeout parses the provider timeout, defaulting to 60s.
func (p *ProviderConfig) GetTimeout() time.Duration {
	if p.Timeout == "" {
		return 60 * time.Second
	}
	timeout, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return timeout
}

// DeployConfig holds deployment pipeline policy.
type DeployConfig struct {
	ProductionBranch string `yaml:"production_branch"`
	InlineThreshold  int    `yaml:"inline_threshold"`
	RequireAlias     bool   `yaml:"require_alias"`
	BackupDir        string `yaml:"backup_dir"`
	DefaultProject   string `yaml:"default_project"`
}

// GenerationConfig configures the language-model generation service.
type GenerationConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// StorageConfig configures the local deployment history database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// DefaultConfig returns a configuration with sensible defaults. Credentials
// still come from the config file or environment.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Deploy: DeployConfig{
			ProductionBranch: "main",
			InlineThreshold:  500,
			BackupDir:        "webmint-backups",
		},
		Storage: StorageConfig{
			DatabasePath: "webmint-history.db",
		},
	}
}

// LoadConfig loads and validates the configuration from a YAML file.
// Missing credentials fall back to environment variables.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}
	config.applyEnvironment()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// applyEnvironment fills empty secret fields from the environment.
func (c *Config) applyEnvironment() {
	if c.Provider.APIToken == "" {
		c.Provider.APIToken = os.Getenv(EnvAPIToken)
	}
	if c.Provider.AccountID == "" {
		c.Provider.AccountID = os.Getenv(EnvAccountID)
	}
	if c.Generation.APIKey == "" {
		c.Generation.APIKey = os.Getenv(EnvGenerationKey)
	}
}

// Validate checks required fields and value shapes.
func (c *Config) Validate() error {
	if c.Provider.AccountID == "" {
		return ErrAccountIDRequired
	}
	if c.Provider.APIToken == "" {
		return ErrAPITokenRequired
	}
	if c.Provider.Timeout != "" {
		if _, err := time.ParseDuration(c.Provider.Timeout); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, c.Provider.Timeout)
		}
	}
	if c.Generation.Enabled && c.Generation.BaseURL == "" {
		return ErrGenerationURLRequired
	}
	return nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filePath, err)
	}
	return nil
}

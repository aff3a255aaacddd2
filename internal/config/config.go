// Package config holds the caip daemon configuration, stored as YAML in the
// data directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Klingon-tech/caip/internal/provider"
)

// ConfigFileName is the default config file name.
const ConfigFileName = "config.yaml"

// Config holds all configuration for the daemon.
type Config struct {
	// API server
	API APIConfig `yaml:"api"`

	// Storage
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Catalog seeding
	Catalog CatalogConfig `yaml:"catalog"`

	// Provider id caches
	Providers ProvidersConfig `yaml:"providers"`
}

// APIConfig holds JSON-RPC server settings.
type APIConfig struct {
	// Address is the host:port to listen on.
	Address string `yaml:"address"`

	// EnableWebSocket serves JSON-RPC over /ws.
	EnableWebSocket bool `yaml:"enable_websocket"`

	// EnableMetrics serves Prometheus metrics on /metrics.
	EnableMetrics bool `yaml:"enable_metrics"`

	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	// DataDir is the directory for all data files.
	DataDir string `yaml:"data_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// Format is text, json or logfmt.
	Format string `yaml:"format"`

	// File is the log file path (empty for stderr).
	File string `yaml:"file"`
}

// CatalogConfig controls where catalog entries come from.
type CatalogConfig struct {
	// LoadDefaultSeed loads the built-in seed of non-native assets.
	LoadDefaultSeed bool `yaml:"load_default_seed"`

	// SeedFiles are extra YAML seed files, loaded in order.
	SeedFiles []string `yaml:"seed_files"`

	// Persist writes the catalog to the database on startup.
	Persist bool `yaml:"persist"`

	// PruneStored deletes stored rows that no longer parse, for example
	// after a chain left the registry.
	PruneStored bool `yaml:"prune_stored"`
}

// ProvidersConfig controls the provider id caches.
type ProvidersConfig struct {
	// Enabled lists the providers to serve.
	Enabled []string `yaml:"enabled"`

	// TTL is how long a loaded table is served before reloading.
	TTL time.Duration `yaml:"ttl"`

	// RetryCooldown is the wait after a failed reload before the next one.
	RetryCooldown time.Duration `yaml:"retry_cooldown"`

	// SeedDefaults writes the built-in tables for providers that have no
	// rows in the database.
	SeedDefaults bool `yaml:"seed_defaults"`

	// Reseed replaces stored tables with the built-in ones on startup.
	// Only applies with SeedDefaults.
	Reseed bool `yaml:"reseed"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	enabled := make([]string, 0, len(provider.Names()))
	for _, name := range provider.Names() {
		enabled = append(enabled, string(name))
	}

	return &Config{
		API: APIConfig{
			Address:         "127.0.0.1:8645",
			EnableWebSocket: true,
			EnableMetrics:   true,
		},
		Storage: StorageConfig{
			DataDir: "~/.caip",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Catalog: CatalogConfig{
			LoadDefaultSeed: true,
			Persist:         true,
		},
		Providers: ProvidersConfig{
			Enabled:       enabled,
			TTL:           provider.DefaultTTL,
			RetryCooldown: provider.DefaultRetryCooldown,
			SeedDefaults:  true,
		},
	}
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.API.Address == "" {
		errs = append(errs, errors.New("api.address is empty"))
	}
	if c.Storage.DataDir == "" {
		errs = append(errs, errors.New("storage.data_dir is empty"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not text, json or logfmt", c.Logging.Format))
	}
	if c.Providers.TTL <= 0 {
		errs = append(errs, fmt.Errorf("providers.ttl must be positive, got %s", c.Providers.TTL))
	}
	if c.Providers.RetryCooldown < 0 {
		errs = append(errs, fmt.Errorf("providers.retry_cooldown must not be negative, got %s", c.Providers.RetryCooldown))
	}

	known := make(map[string]bool)
	for _, name := range provider.Names() {
		known[string(name)] = true
	}
	for _, name := range c.Providers.Enabled {
		if !known[name] {
			errs = append(errs, fmt.Errorf("providers.enabled: unknown provider %q", name))
		}
	}

	return errors.Join(errs...)
}

// ProviderNames returns the enabled providers as typed names.
func (c *Config) ProviderNames() []provider.Name {
	names := make([]provider.Name, 0, len(c.Providers.Enabled))
	for _, name := range c.Providers.Enabled {
		names = append(names, provider.Name(name))
	}
	return names
}

// LoadConfig loads configuration from the data directory.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(dataDir string) (*Config, error) {
	return LoadConfigFile(ConfigPath(dataDir), dataDir)
}

// LoadConfigFile loads configuration from an explicit path. A missing file
// is created with default values and dataDir as the data directory.
func LoadConfigFile(path, dataDir string) (*Config, error) {
	path = expandPath(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if dataDir != "" {
			cfg.Storage.DataDir = dataDir
		}

		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# caipd configuration\n# Generated automatically on first run\n\n")
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigPath returns the full path to the config file for the given data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(expandPath(dataDir), ConfigFileName)
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) string {
	return expandPath(path)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

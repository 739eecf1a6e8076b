package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gravitrone/labproto/cli/internal/api"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
)

// Config holds CLI configuration stored at ~/.labproto/config.
type Config struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Username string `yaml:"username,omitempty"`
	Cache    string `yaml:"cache,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
}

// Dir returns the directory holding config and cache files.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".labproto")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// CachePath returns the sqlite cache location.
func CachePath() string {
	return filepath.Join(Dir(), "cache.sqlite")
}

// Load reads and parses the config file. Returns error if missing or insecure.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("config missing api_key")
	}
	switch cfg.CacheBackend() {
	case CacheMemory, CacheSQLite:
	default:
		return nil, fmt.Errorf("config cache must be %q or %q, got %q", CacheMemory, CacheSQLite, cfg.Cache)
	}

	return &cfg, nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// Server returns the configured base URL, falling back to the default.
func (c *Config) Server() string {
	if c == nil || strings.TrimSpace(c.BaseURL) == "" {
		return api.DefaultBaseURL
	}
	return strings.TrimSpace(c.BaseURL)
}

// CacheBackend returns the configured cache backend name.
func (c *Config) CacheBackend() string {
	if c == nil || strings.TrimSpace(c.Cache) == "" {
		return CacheMemory
	}
	return strings.ToLower(strings.TrimSpace(c.Cache))
}

// Client builds an API client for this config.
func (c *Config) Client() *api.Client {
	if c == nil {
		return api.NewDefaultClient("")
	}
	return api.NewClient(c.Server(), c.APIKey)
}

// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for catalog configuration.
	DefaultConfigDir = ".catalog"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default SQLite file name inside the config directory.
	DefaultDatabaseFile = "catalog.db"
)

// Notifier transports.
const (
	NotifierNone    = "none"
	NotifierLog     = "log"
	NotifierWebhook = "webhook"
)

// Counter backends.
const (
	CountersSQLite = "sqlite"
	CountersRedis  = "redis"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
	Review   ReviewConfig   `yaml:"review,omitempty"`
	Notifier NotifierConfig `yaml:"notifier,omitempty"`
	Counters CountersConfig `yaml:"counters,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. Relative paths resolve
	// against the config directory.
	Path string `yaml:"path,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `yaml:"level,omitempty"`
	Environment string `yaml:"environment,omitempty"`
}

// ReviewConfig holds review policy settings.
type ReviewConfig struct {
	// ExemptIDs may review their own proposals.
	ExemptIDs []string `yaml:"exempt_ids,omitempty"`
}

// NotifierConfig holds outbound notification settings.
type NotifierConfig struct {
	Type       string        `yaml:"type,omitempty"`
	URL        string        `yaml:"url,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	MaxRetries int           `yaml:"max_retries,omitempty"`
	QueueSize  int           `yaml:"queue_size,omitempty"`
}

// CountersConfig selects the contribution counter backend.
type CountersConfig struct {
	Backend string      `yaml:"backend,omitempty"`
	Redis   RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig holds connection settings for Redis.
type RedisConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		SQLite: SQLiteConfig{
			Path: DefaultDatabaseFile,
		},
		Log: LogConfig{
			Level:       "info",
			Environment: "development",
		},
		Notifier: NotifierConfig{
			Type:       NotifierLog,
			Timeout:    10 * time.Second,
			MaxRetries: 3,
			QueueSize:  256,
		},
		Counters: CountersConfig{
			Backend: CountersSQLite,
			Redis: RedisConfig{
				Host: "localhost",
				Port: 6379,
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from the .catalog directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'catalog init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("CATALOG_WEBHOOK_URL"); url != "" {
		c.Notifier.URL = url
		if c.Notifier.Type == "" || c.Notifier.Type == NotifierLog {
			c.Notifier.Type = NotifierWebhook
		}
	}
	if pw := os.Getenv("CATALOG_REDIS_PASSWORD"); pw != "" && c.Counters.Redis.Password == "" {
		c.Counters.Redis.Password = pw
	}
	if level := os.Getenv("CATALOG_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Notifier.Type {
	case NotifierNone, NotifierLog:
	case NotifierWebhook:
		if c.Notifier.URL == "" {
			return fmt.Errorf("notifier.url is required for the webhook notifier")
		}
	default:
		return fmt.Errorf("unknown notifier type %q", c.Notifier.Type)
	}
	switch c.Counters.Backend {
	case CountersSQLite, CountersRedis:
	default:
		return fmt.Errorf("unknown counters backend %q", c.Counters.Backend)
	}
	return nil
}

// DatabasePath returns the SQLite path, resolved against the config directory.
func (c *Config) DatabasePath(basePath string) string {
	p := c.SQLite.Path
	if p == "" {
		p = DefaultDatabaseFile
	}
	if p == ":memory:" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(ConfigDir(basePath), p)
}

// ConfigDir returns the path to the .catalog config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if a catalog config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Catalog Review Configuration

sqlite:
  path: catalog.db

log:
  level: info
  environment: development

review:
  # Developer accounts allowed to review their own proposals.
  # exempt_ids: [dev-account-id]

notifier:
  # none, log or webhook
  type: log
  # url: https://chat.example.com/api/webhooks/... (or set CATALOG_WEBHOOK_URL env var)
  timeout: 10s
  max_retries: 3
  queue_size: 256

counters:
  # sqlite or redis
  backend: sqlite
  redis:
    host: localhost
    port: 6379
    # password: secret (or set CATALOG_REDIS_PASSWORD env var)
    db: 0

server:
  addr: ":8080"
`

// WriteDefault creates the .catalog directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

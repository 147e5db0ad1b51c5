package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigYAMLMatchesDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	err := WriteDefault(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.True(t, Exists(dir))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog init")
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
review:
  exempt_ids: [dev-1, dev-2]
notifier:
  type: webhook
  url: http://hooks.example
  timeout: 2s
counters:
  backend: redis
  redis:
    host: cache
`
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"dev-1", "dev-2"}, cfg.Review.ExemptIDs)
	assert.Equal(t, NotifierWebhook, cfg.Notifier.Type)
	assert.Equal(t, 2*time.Second, cfg.Notifier.Timeout)
	assert.Equal(t, 3, cfg.Notifier.MaxRetries)
	assert.Equal(t, "cache:6379", cfg.Counters.Redis.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	t.Setenv("CATALOG_WEBHOOK_URL", "http://env.example/hook")
	t.Setenv("CATALOG_REDIS_PASSWORD", "s3cret")
	t.Setenv("CATALOG_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, NotifierWebhook, cfg.Notifier.Type)
	assert.Equal(t, "http://env.example/hook", cfg.Notifier.URL)
	assert.Equal(t, "s3cret", cfg.Counters.Redis.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"webhook without url", func(c *Config) { c.Notifier.Type = NotifierWebhook }, "notifier.url"},
		{"unknown notifier", func(c *Config) { c.Notifier.Type = "carrier-pigeon" }, "unknown notifier"},
		{"unknown counters", func(c *Config) { c.Counters.Backend = "etcd" }, "unknown counters"},
		{"disabled notifier", func(c *Config) { c.Notifier.Type = NotifierNone }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/srv", ".catalog", "catalog.db"), cfg.DatabasePath("/srv"))

	cfg.SQLite.Path = "/var/lib/catalog.db"
	assert.Equal(t, "/var/lib/catalog.db", cfg.DatabasePath("/srv"))

	cfg.SQLite.Path = ":memory:"
	assert.Equal(t, ":memory:", cfg.DatabasePath("/srv"))
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Review.ExemptIDs = []string{"dev-1"}
	cfg.Server.Addr = "127.0.0.1:9000"

	require.NoError(t, Write(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

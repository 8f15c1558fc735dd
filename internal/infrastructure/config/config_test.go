package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Share config
	assert.Empty(t, cfg.Share.Root)
	assert.Equal(t, 1000, cfg.Share.MaxScanItems)
	assert.Equal(t, int64(10<<20), cfg.Share.MaxReturnFileSize)
	assert.Equal(t, int64(100<<20), cfg.Share.MaxReadFileSize)
	assert.True(t, cfg.Metadata.Enabled)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                        "9000",
		"HOST":                        "127.0.0.1",
		"SHUTDOWN_TIMEOUT_SECONDS":    "3",
		"LOG_LEVEL":                   "debug",
		"LOG_DEV":                     "true",
		"RATE_LIMIT_RPS":              "500",
		"RATE_LIMIT_BURST":            "1000",
		"RATE_LIMIT_ENABLED":          "false",
		"SHARE_ROOT":                  "/srv/share",
		"SHARE_SNAPSHOT_FOLDER":       ".snapshot",
		"SHARE_INCLUDE_SNAPSHOT_ROOT": "true",
		"SHARE_EXCLUDE_FOLDERS":       "private,tmp/cache",
		"SHARE_EXCLUDE_PATTERNS":      "**/.git",
		"SHARE_MAX_SCAN_ITEMS":        "50",
		"SHARE_MAX_RETURN_FILE_SIZE":  "1024",
		"SHARE_MAX_READ_FILE_SIZE":    "2048",
		"SHARE_DETECT_CHARSET":        "true",
		"METADATA_ENABLED":            "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Metadata.Enabled)

	share := cfg.ShareConfig()
	assert.Equal(t, "/srv/share", share.Root)
	assert.Equal(t, ".snapshot", share.SnapshotFolder)
	assert.True(t, share.IncludeSnapshotRoot)
	assert.Equal(t, []string{"private", "tmp/cache"}, share.ExcludeFolders)
	assert.Equal(t, []string{"**/.git"}, share.ExcludePatterns)
	assert.Equal(t, 50, share.MaxScanItems)
	assert.Equal(t, int64(1024), share.MaxReturnFileSize)
	assert.Equal(t, int64(2048), share.MaxReadFileSize)
	assert.True(t, share.DetectCharset)
}

func TestLoadInvalidEnvironment(t *testing.T) {
	t.Setenv("SHARE_MAX_SCAN_ITEMS", "many")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 1000, cfg.Share.MaxScanItems)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "shareview.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
server:
  port: "9100"
share:
  root: /data/share
  snapshot_folder: .snapshot
  exclude_folders:
    - private
  max_scan_items: 25
`), 0o644))

	tomlPath := filepath.Join(dir, "shareview.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
[logging]
level = "warn"

[share]
root = "/data/share"
exclude_patterns = ["**/*.tmp"]
max_read_file_size = 4096
`), 0o644))

	t.Run("yaml", func(t *testing.T) {
		cfg, err := LoadFile(yamlPath)
		require.NoError(t, err)
		assert.Equal(t, "9100", cfg.Server.Port)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep defaults")
		assert.Equal(t, "/data/share", cfg.Share.Root)
		assert.Equal(t, ".snapshot", cfg.Share.SnapshotFolder)
		assert.Equal(t, []string{"private"}, cfg.Share.ExcludeFolders)
		assert.Equal(t, 25, cfg.Share.MaxScanItems)
		assert.Equal(t, int64(10<<20), cfg.Share.MaxReturnFileSize)
	})

	t.Run("toml", func(t *testing.T) {
		cfg, err := LoadFile(tomlPath)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, []string{"**/*.tmp"}, cfg.Share.ExcludePatterns)
		assert.Equal(t, int64(4096), cfg.Share.MaxReadFileSize)
		assert.Equal(t, 1000, cfg.Share.MaxScanItems)
	})

	t.Run("unsupported", func(t *testing.T) {
		path := filepath.Join(dir, "shareview.ini")
		require.NoError(t, os.WriteFile(path, []byte("port=1"), 0o644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("[share\nroot ="), 0o644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Share.Root = "/srv/share"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing root", func(c *Config) { c.Share.Root = "" }},
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"negative timeout", func(c *Config) { c.Server.ShutdownTimeoutSeconds = -1 }},
		{"zero rps", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }},
		{"negative scan items", func(c *Config) { c.Share.MaxScanItems = -1 }},
		{"negative size", func(c *Config) { c.Share.MaxReadFileSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Share.Root = "/srv/share"
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	disabled := Default()
	disabled.Share.Root = "/srv/share"
	disabled.RateLimit.Enabled = false
	disabled.RateLimit.RequestsPerSecond = 0
	assert.NoError(t, disabled.Validate())
}

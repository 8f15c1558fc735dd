package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Share     ShareConfig     `yaml:"share" toml:"share"`
	Metadata  MetadataConfig  `yaml:"metadata" toml:"metadata"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port                   string   `envconfig:"PORT" default:"8000" yaml:"port" toml:"port"`
	Host                   string   `envconfig:"HOST" default:"0.0.0.0" yaml:"host" toml:"host"`
	ShutdownTimeoutSeconds int      `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"10" yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds"`
	AllowedOrigins         []string `envconfig:"CORS_ORIGINS" default:"*" yaml:"allowed_origins" toml:"allowed_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ShutdownTimeout returns the graceful shutdown budget.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
}

// ShareConfig describes the exposed directory tree. Sizes are in bytes; zero disables a limit.
type ShareConfig struct {
	Root                string   `envconfig:"SHARE_ROOT" yaml:"root" toml:"root"`
	SnapshotFolder      string   `envconfig:"SHARE_SNAPSHOT_FOLDER" yaml:"snapshot_folder" toml:"snapshot_folder"`
	IncludeSnapshotRoot bool     `envconfig:"SHARE_INCLUDE_SNAPSHOT_ROOT" default:"false" yaml:"include_snapshot_root" toml:"include_snapshot_root"`
	ExcludeFolders      []string `envconfig:"SHARE_EXCLUDE_FOLDERS" yaml:"exclude_folders" toml:"exclude_folders"`
	ExcludePatterns     []string `envconfig:"SHARE_EXCLUDE_PATTERNS" yaml:"exclude_patterns" toml:"exclude_patterns"`
	MaxScanItems        int      `envconfig:"SHARE_MAX_SCAN_ITEMS" default:"1000" yaml:"max_scan_items" toml:"max_scan_items"`
	MaxReturnFileSize   int64    `envconfig:"SHARE_MAX_RETURN_FILE_SIZE" default:"10485760" yaml:"max_return_file_size" toml:"max_return_file_size"`
	MaxReadFileSize     int64    `envconfig:"SHARE_MAX_READ_FILE_SIZE" default:"104857600" yaml:"max_read_file_size" toml:"max_read_file_size"`
	DetectCharset       bool     `envconfig:"SHARE_DETECT_CHARSET" default:"false" yaml:"detect_charset" toml:"detect_charset"`
}

// MetadataConfig toggles metadata extraction.
type MetadataConfig struct {
	Enabled bool `envconfig:"METADATA_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile decodes a YAML or TOML file over Default. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   "8000",
			Host:                   "0.0.0.0",
			ShutdownTimeoutSeconds: 10,
			AllowedOrigins:         []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Share: ShareConfig{
			MaxScanItems:      1000,
			MaxReturnFileSize: 10 << 20,
			MaxReadFileSize:   100 << 20,
		},
		Metadata: MetadataConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration shape. Filesystem checks happen when the share opens.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is required"))
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		errs = append(errs, errors.New("shutdown timeout must not be negative"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit requires positive rps and burst"))
	}
	if c.Share.Root == "" {
		errs = append(errs, errors.New("share root is required"))
	}
	if c.Share.MaxScanItems < 0 {
		errs = append(errs, errors.New("max scan items must not be negative"))
	}
	if c.Share.MaxReturnFileSize < 0 || c.Share.MaxReadFileSize < 0 {
		errs = append(errs, errors.New("file size limits must not be negative"))
	}
	return errors.Join(errs...)
}

// ShareConfig converts the share section for share.NewService.
func (c *Config) ShareConfig() share.Config {
	return share.Config{
		Root:                c.Share.Root,
		SnapshotFolder:      c.Share.SnapshotFolder,
		IncludeSnapshotRoot: c.Share.IncludeSnapshotRoot,
		ExcludeFolders:      append([]string(nil), c.Share.ExcludeFolders...),
		ExcludePatterns:     append([]string(nil), c.Share.ExcludePatterns...),
		MaxScanItems:        c.Share.MaxScanItems,
		MaxReturnFileSize:   c.Share.MaxReturnFileSize,
		MaxReadFileSize:     c.Share.MaxReadFileSize,
		DetectCharset:       c.Share.DetectCharset,
	}
}

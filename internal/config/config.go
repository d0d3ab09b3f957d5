package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spachava753/procreg/internal/models"
)

// Environment variables that override values from procreg.toml.
const (
	EnvRemoteURL = "PROCREG_REMOTE_URL"
	EnvLogLevel  = "PROCREG_LOG_LEVEL"
)

// DefaultConfigFile is the file name looked up when no --config is given.
const DefaultConfigFile = "procreg.toml"

// DefaultConfig returns a Config with default values.
func DefaultConfig() models.Config {
	return models.Config{
		LogLevel: "info",
		Remote: models.RemoteConfig{
			BaseURL:    "http://localhost:8080/api/ao",
			TimeoutSec: 10.0,
		},
		Refresh: models.RefreshConfig{
			IntervalSec: 30.0,
		},
	}
}

// LoadConfig loads and parses the named TOML file from the given filesystem.
func LoadConfig(fsys fs.FS, name string) (models.Config, error) {
	cfg := DefaultConfig()

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", name, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", name, err)
	}

	// Handle legacy 'timeout' duration string if 'timeout_sec' is not explicitly set
	if !md.IsDefined("remote", "timeout_sec") && md.IsDefined("remote", "timeout") {
		d, err := time.ParseDuration(cfg.Remote.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("parsing timeout %q: %w", cfg.Remote.Timeout, err)
		}
		cfg.Remote.TimeoutSec = d.Seconds()
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		slog.Debug("ignoring unknown config keys", "file", name, "keys", undecoded)
	}

	return cfg, nil
}

// LoadConfigFile loads a config file from disk and applies environment
// overrides. A missing file is not an error: defaults are used instead.
func LoadConfigFile(path string) (models.Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	cfg, err := LoadConfig(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
		slog.Debug("config file not found, using defaults", "path", path)
		cfg = DefaultConfig()
	}

	ApplyEnv(&cfg, os.Getenv)

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any values set in the environment.
func ApplyEnv(cfg *models.Config, getenv func(string) string) {
	if v := getenv(EnvRemoteURL); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks that cfg can be used to build a client.
func Validate(cfg models.Config) error {
	u, err := url.Parse(cfg.Remote.BaseURL)
	if err != nil {
		return fmt.Errorf("remote.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote.base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("remote.base_url: missing host")
	}
	if cfg.Remote.TimeoutSec <= 0 {
		return fmt.Errorf("remote.timeout_sec must be positive, got %v", cfg.Remote.TimeoutSec)
	}
	if cfg.Refresh.IntervalSec <= 0 {
		return fmt.Errorf("refresh.interval_sec must be positive, got %v", cfg.Refresh.IntervalSec)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel converts a log_level value into a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

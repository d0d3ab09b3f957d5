package models

import "time"

// Config represents the parsed procreg.toml client configuration.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Remote   RemoteConfig  `toml:"remote"`
	Catalog  CatalogConfig `toml:"catalog"`
	Refresh  RefreshConfig `toml:"refresh"`
}

type RemoteConfig struct {
	BaseURL    string  `toml:"base_url"`
	TimeoutSec float64 `toml:"timeout_sec"`       // default: 10.0
	Timeout    string  `toml:"timeout,omitempty"` // Deprecated: use TimeoutSec
}

type CatalogConfig struct {
	Path string `toml:"path"` // empty = built-in catalog
}

type RefreshConfig struct {
	IntervalSec float64 `toml:"interval_sec"` // default: 30.0
}

// RequestTimeout returns the per-request timeout for remote calls.
func (c RemoteConfig) RequestTimeout() time.Duration {
	return seconds(c.TimeoutSec)
}

// Interval returns the polling interval used by watch mode.
func (c RefreshConfig) Interval() time.Duration {
	return seconds(c.IntervalSec)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

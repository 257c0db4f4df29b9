// Package config loads per-project settings from .project-index.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is looked up in the project root.
const FileName = ".project-index.toml"

const (
	DefaultMaxFiles      = 10000
	DefaultMaxFileSize   = 1_000_000
	DefaultOutput        = "PROJECT_INDEX.dsl"
	DefaultEngineTimeout = 10000 // milliseconds
	DefaultWatchDebounce = 500   // milliseconds
)

// Config holds the settings for one index run. Flags override whatever the
// config file sets.
type Config struct {
	MaxFiles        int      `toml:"max_files"`
	MaxFileSize     int64    `toml:"max_file_size"`
	Languages       []string `toml:"languages"`
	Output          string   `toml:"output"`
	Ignore          []string `toml:"ignore"`
	EngineTimeoutMs int      `toml:"engine_timeout_ms"`
	WatchDebounceMs int      `toml:"watch_debounce_ms"`
}

// EngineTimeout returns the external-engine subprocess timeout.
func (c *Config) EngineTimeout() time.Duration {
	return time.Duration(c.EngineTimeoutMs) * time.Millisecond
}

// WatchDebounce returns the watch-mode debounce window.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxFiles:        DefaultMaxFiles,
		MaxFileSize:     DefaultMaxFileSize,
		Output:          DefaultOutput,
		EngineTimeoutMs: DefaultEngineTimeout,
		WatchDebounceMs: DefaultWatchDebounce,
	}
}

// Load reads root's config file, layered over the defaults. A missing file is
// not an error; a malformed one is.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(root, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = DefaultMaxFiles
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.EngineTimeoutMs <= 0 {
		cfg.EngineTimeoutMs = DefaultEngineTimeout
	}
	if cfg.WatchDebounceMs <= 0 {
		cfg.WatchDebounceMs = DefaultWatchDebounce
	}
	return cfg, nil
}

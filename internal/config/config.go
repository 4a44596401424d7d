package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	DataDir string   `koanf:"data_dir"` // empty means XDG data dir
	Feeds   []string `koanf:"feeds"`    // subscribed podcast feed URLs

	// Progress sync backend (enables cross-device resume when configured)
	Sync SyncConfig `koanf:"sync"`

	// Playback settings
	Playback PlaybackConfig `koanf:"playback"`

	// Log settings
	Log LogConfig `koanf:"log"`
}

// SyncConfig holds the remote progress-sync configuration.
type SyncConfig struct {
	URL    string `koanf:"url"`     // e.g. "https://sync.example.com"
	APIKey string `koanf:"api_key"` // bearer token
	UserID string `koanf:"user_id"` // account this device syncs as
}

// PlaybackConfig holds transport tuning.
type PlaybackConfig struct {
	SeekStepSeconds    int `koanf:"seek_step_seconds"`    // relative-seek step (default: 30)
	ProgressIntervalMS int `koanf:"progress_interval_ms"` // status tick interval (default: 1000)
	FeedCacheTTLMin    int `koanf:"feed_cache_ttl_min"`   // feed cache TTL in minutes (default: 30)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `koanf:"level"` // debug, info, warn, error
	File       string `koanf:"file"`  // empty means stderr only
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.DataDir != "" {
		cfg.DataDir = expandPath(cfg.DataDir)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	// Normalize sync URL (remove trailing slash)
	cfg.Sync.URL = strings.TrimSuffix(cfg.Sync.URL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/earshot/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "earshot", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasSyncConfig returns true if the progress-sync backend is configured.
func (c *Config) HasSyncConfig() bool {
	return c.Sync.URL != "" && c.Sync.UserID != ""
}

// SeekStep returns the relative-seek step with the default applied.
func (c *Config) SeekStep() time.Duration {
	if c.Playback.SeekStepSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Playback.SeekStepSeconds) * time.Second
}

// ProgressInterval returns the status tick interval with the default applied.
func (c *Config) ProgressInterval() time.Duration {
	if c.Playback.ProgressIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.Playback.ProgressIntervalMS) * time.Millisecond
}

// FeedCacheTTL returns the feed cache TTL with the default applied.
func (c *Config) FeedCacheTTL() time.Duration {
	if c.Playback.FeedCacheTTLMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Playback.FeedCacheTTLMin) * time.Minute
}

// Package config loads and validates the optional agentd YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for executor and agent configuration.
const (
	DefaultTimeout      = 5 * time.Minute
	DefaultKillGrace    = 5 * time.Second
	DefaultDrainTimeout = 2 * time.Second
	DefaultMaxOutput    = 1 << 20 // 1 MB per stream
	DefaultActionsDir   = "actions"
	DefaultCacheSize    = 16
)

// DefaultPath is used when no -config flag is given.
const DefaultPath = "agentd.yaml"

// Config holds the parsed agentd configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version         int    `yaml:"version"`
	RawTimeout      string `yaml:"timeout"`       // e.g. "5m", "30s", "none"
	RawKillGrace    string `yaml:"kill_grace"`    // SIGTERM to SIGKILL delay
	RawDrainTimeout string `yaml:"drain_timeout"` // wait for pipes held by descendants
	RawMaxOutput    int    `yaml:"max_output"`    // bytes per stream
	ActionsDir      string `yaml:"actions_dir"`   // directory of action executables
	SpoolDir        string `yaml:"spool_dir"`     // results directory; temp dir when empty
	RawCacheSize    int    `yaml:"cache_size"`    // results kept in memory
}

// Timeout returns the configured default action timeout. Zero means the
// timeout was explicitly disabled with "none".
func (c *Config) Timeout() time.Duration {
	if strings.EqualFold(strings.TrimSpace(c.RawTimeout), "none") {
		return 0
	}
	return parseDuration(c.RawTimeout, DefaultTimeout)
}

// KillGrace returns the configured kill grace or the default.
func (c *Config) KillGrace() time.Duration {
	return parseDuration(c.RawKillGrace, DefaultKillGrace)
}

// DrainTimeout returns the configured drain timeout or the default.
func (c *Config) DrainTimeout() time.Duration {
	return parseDuration(c.RawDrainTimeout, DefaultDrainTimeout)
}

// MaxOutputBytes returns the configured max output size or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// ActionsPath returns the actions directory, falling back to "actions".
func (c *Config) ActionsPath() string {
	if c.ActionsDir != "" {
		return c.ActionsDir
	}
	return DefaultActionsDir
}

// CacheSize returns the configured results cache size or the default.
func (c *Config) CacheSize() int {
	if c.RawCacheSize > 0 {
		return c.RawCacheSize
	}
	return DefaultCacheSize
}

func parseDuration(raw string, def time.Duration) time.Duration {
	if raw != "" {
		d, err := time.ParseDuration(raw)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}

// Load reads the configuration file at path. A missing file yields the
// default Config; an unreadable or malformed one is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for key, raw := range map[string]string{
		"kill_grace":    c.RawKillGrace,
		"drain_timeout": c.RawDrainTimeout,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	if c.RawTimeout != "" && !strings.EqualFold(strings.TrimSpace(c.RawTimeout), "none") {
		if _, err := time.ParseDuration(c.RawTimeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	if c.RawMaxOutput < 0 {
		return fmt.Errorf("max_output: must not be negative, got %d", c.RawMaxOutput)
	}
	return nil
}

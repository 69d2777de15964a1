package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendSystem = "system"
	BackendMemory = "memory"
)

// Config holds persistent seedvault configuration loaded from
// ~/.seedvault/config.yaml.
type Config struct {
	// Service is the keychain service attribute records are filed under.
	Service string `yaml:"service"`
	// Backend selects the secure store: "system" (default) or "memory".
	Backend string `yaml:"backend"`
	// AuditLog is the audit log path. Empty selects ~/.seedvault/audit.log.
	AuditLog string `yaml:"audit_log"`
	// MetadataFile holds per-record timestamps. Empty selects
	// ~/.seedvault/record-metadata.json.
	MetadataFile string `yaml:"metadata_file"`
	// AttemptsPerSecond throttles decryption attempts. Zero disables it.
	AttemptsPerSecond float64 `yaml:"attempts_per_second"`
	AttemptBurst      int     `yaml:"attempt_burst"`
	LogLevel          string  `yaml:"log_level"`
}

// DefaultPath returns the default config file path: ~/.seedvault/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".seedvault", "config.yaml")
}

// Load reads a YAML config file from path. If the file does not exist,
// it returns an empty Config and no error. An empty or all-comment file
// also returns an empty Config with no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values. Zero values are valid and mean "default".
func (c *Config) Validate() error {
	switch c.Backend {
	case "", BackendSystem, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendSystem, BackendMemory)
	}
	if c.AttemptsPerSecond < 0 {
		return fmt.Errorf("attempts_per_second must not be negative")
	}
	if c.AttemptBurst < 0 {
		return fmt.Errorf("attempt_burst must not be negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}

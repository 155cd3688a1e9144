// Package config loads dir-catalog settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dir-catalog/internal/catalog"
	"dir-catalog/internal/logging"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".dir-catalog.yaml"

// Config represents dir-catalog configuration options
type Config struct {
	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" or "json"
	LogFormat string `yaml:"log_format"`

	// LogFile receives log output; empty means stderr
	LogFile string `yaml:"log_file"`

	// DeletePolicy is "optimistic" (drop the record even if removal fails) or "strict"
	DeletePolicy string `yaml:"delete_policy"`

	// DryRun never removes files from disk
	DryRun bool `yaml:"dry_run"`

	// BackupDir, when set, receives a zip of every file before it is deleted
	BackupDir string `yaml:"backup_dir"`

	// Excludes are glob patterns for files left out of the catalog
	Excludes []string `yaml:"excludes"`

	// TUI starts the full-screen interface instead of the numbered menu
	TUI bool `yaml:"tui"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "warn",
		LogFormat:    "console",
		DeletePolicy: catalog.PolicyOptimistic.String(),
	}
}

// LoadConfig loads configuration from the specified file path.
// A missing file yields the defaults; a malformed one is an error.
// Field values are not checked here: callers apply their overrides and
// then call Validate.
func LoadConfig(path string) (*Config, error) {
	cfg, err := LoadRequired(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadRequired is LoadConfig for a file the user named explicitly: a missing
// file is an error.
func LoadRequired(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := ParsePolicy(c.DeletePolicy); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Policy returns the parsed delete policy. Call Validate first.
func (c *Config) Policy() catalog.DeletePolicy {
	p, _ := ParsePolicy(c.DeletePolicy)
	return p
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat, OutputPath: c.LogFile}
}

// ParsePolicy maps a policy name to a catalog.DeletePolicy.
func ParsePolicy(s string) (catalog.DeletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "optimistic":
		return catalog.PolicyOptimistic, nil
	case "strict":
		return catalog.PolicyStrict, nil
	default:
		return catalog.PolicyOptimistic, fmt.Errorf("unknown delete policy %q (want optimistic or strict)", s)
	}
}

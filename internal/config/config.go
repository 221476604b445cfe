// Package config provides configuration types, defaults, and persistence for heinlein.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/zjrosen/heinlein/internal/log"
	"github.com/zjrosen/heinlein/internal/paths"
	"github.com/zjrosen/heinlein/internal/presentation"
	"github.com/zjrosen/heinlein/internal/tracing"
)

// FileName is the settings file name inside the config directory.
const FileName = "config.yaml"

// Config holds all configuration options for heinlein.
type Config struct {
	// Root is the registry root holding datasets/. Empty means DefaultRoot.
	Root string `mapstructure:"root"`

	// Debug enables the file logger.
	Debug bool `mapstructure:"debug"`

	// LogFile overrides the debug log location (default: <root>/debug.log).
	LogFile string `mapstructure:"log_file"`

	// AssumeYes answers every confirmation prompt with yes.
	AssumeYes bool `mapstructure:"assume_yes"`

	// Output is the result format: "table", "json" or "yaml".
	Output string `mapstructure:"output"`

	Tracing tracing.Config `mapstructure:"tracing"`
}

// DefaultConfigDir returns the directory holding the settings file.
func DefaultConfigDir() string {
	return paths.DefaultRoot()
}

// DefaultConfigPath returns the default settings file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), FileName)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Root:    "", // Derived from os.UserConfigDir at runtime
		Output:  string(presentation.FormatTable),
		Tracing: tracing.DefaultConfig(),
	}
}

// ResolvedRoot returns the registry root with a leading ~ expanded.
func (c Config) ResolvedRoot() string {
	if c.Root == "" {
		return paths.DefaultRoot()
	}
	return ExpandHome(c.Root)
}

// ResolvedLogFile returns the debug log path.
func (c Config) ResolvedLogFile() string {
	if c.LogFile != "" {
		return ExpandHome(c.LogFile)
	}
	return filepath.Join(c.ResolvedRoot(), "debug.log")
}

// ResolvedTracing returns the tracing config with the file path defaulted
// under the registry root.
func (c Config) ResolvedTracing() tracing.Config {
	t := c.Tracing
	if t.FilePath == "" {
		t.FilePath = filepath.Join(c.ResolvedRoot(), "traces", "traces.jsonl")
	} else {
		t.FilePath = ExpandHome(t.FilePath)
	}
	return t
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if _, err := presentation.ParseFormat(c.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return c.ResolvedTracing().Validate()
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Heinlein Configuration

# Directory holding the dataset registry (default: <user config dir>/heinlein)
# root: ~/data/heinlein

# Output format for command results: table, json or yaml
output: table

# Answer "yes" to every confirmation prompt (same as --yes)
assume_yes: false

# Write a debug log (same as --debug)
debug: false
# log_file: ~/.config/heinlein/debug.log

# Tracing of registry operations
tracing:
  enabled: false
  exporter: file          # none, file, stdout or otlp
  # file_path: ~/.config/heinlein/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: heinlein
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist. An existing file is left alone
// unless force is set.
func WriteDefaultConfig(configPath string, force bool) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file %s already exists", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := renameio.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

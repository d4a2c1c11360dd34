package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const ConfigFile = "modkit.yml"

// DefaultModulesDir is where materialized modules live, relative to the
// project root.
const DefaultModulesDir = "modules"

// Config represents the modkit.yml file at a project root.
type Config struct {
	Version    int           `yaml:"version"`
	Hosting    HostingConfig `yaml:"hosting"`
	ModulesDir string        `yaml:"modules_dir,omitempty"`

	// DefaultMode is the materialization used when the command line does
	// not pick one: "copy" or "link".
	DefaultMode string `yaml:"default_mode,omitempty"`

	// StrictMajor makes major-version jumps hard errors instead of
	// warnings.
	StrictMajor bool `yaml:"strict_major,omitempty"`
}

// HostingConfig holds the hosting-provider connection settings. The token is
// deliberately not part of the file; it comes from the environment.
type HostingConfig struct {
	Host       string `yaml:"host"`
	Org        string `yaml:"org"`
	Visibility string `yaml:"visibility,omitempty"`
}

// ConfigExists checks whether the config file exists in the given directory.
func ConfigExists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFile))
	return err == nil
}

// LoadConfig reads and parses the config file from the given directory.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: run 'modkit init' first")
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&c)

	if err := ValidateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// SaveConfig writes the config file to the given directory.
func SaveConfig(dir string, c *Config) error {
	applyDefaults(c)

	content, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	path := filepath.Join(dir, ConfigFile)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, content, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("saving config: %w", err)
	}

	return nil
}

func applyDefaults(c *Config) {
	if c.ModulesDir == "" {
		c.ModulesDir = DefaultModulesDir
	}
	if c.DefaultMode == "" {
		c.DefaultMode = "copy"
	}
	if c.Hosting.Visibility == "" {
		c.Hosting.Visibility = "private"
	}
}

// ValidateConfig checks that a Config struct has required fields.
func ValidateConfig(c *Config) error {
	if c.Version < 1 {
		return fmt.Errorf("invalid config version: %d", c.Version)
	}
	if c.Hosting.Host == "" {
		return fmt.Errorf("hosting host is required")
	}
	if c.Hosting.Org == "" {
		return fmt.Errorf("hosting org is required")
	}
	if c.DefaultMode != "copy" && c.DefaultMode != "link" {
		return fmt.Errorf("invalid default_mode: %q (want copy or link)", c.DefaultMode)
	}
	switch c.Hosting.Visibility {
	case "private", "internal", "public":
	default:
		return fmt.Errorf("invalid visibility: %q", c.Hosting.Visibility)
	}
	return nil
}

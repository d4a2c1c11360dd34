package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	original := &Config{
		Version: 1,
		Hosting: HostingConfig{
			Host:       "https://gitlab.example.com",
			Org:        "game-modules",
			Visibility: "internal",
		},
		ModulesDir:  "modules",
		DefaultMode: "link",
		StrictMajor: true,
	}

	if err := SaveConfig(dir, original); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if loaded.Version != original.Version {
		t.Errorf("Version = %d, want %d", loaded.Version, original.Version)
	}
	if loaded.Hosting.Host != original.Hosting.Host {
		t.Errorf("Hosting.Host = %q, want %q", loaded.Hosting.Host, original.Hosting.Host)
	}
	if loaded.Hosting.Org != original.Hosting.Org {
		t.Errorf("Hosting.Org = %q, want %q", loaded.Hosting.Org, original.Hosting.Org)
	}
	if loaded.Hosting.Visibility != "internal" {
		t.Errorf("Hosting.Visibility = %q, want %q", loaded.Hosting.Visibility, "internal")
	}
	if loaded.DefaultMode != "link" {
		t.Errorf("DefaultMode = %q, want %q", loaded.DefaultMode, "link")
	}
	if !loaded.StrictMajor {
		t.Error("StrictMajor should survive the round trip")
	}
}

func TestConfigDefaults(t *testing.T) {
	dir := t.TempDir()

	// Save with empty defaults
	original := &Config{
		Version: 1,
		Hosting: HostingConfig{
			Host: "https://gitlab.example.com",
			Org:  "game-modules",
		},
	}

	if err := SaveConfig(dir, original); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	// Defaults should be applied
	if loaded.ModulesDir != DefaultModulesDir {
		t.Errorf("ModulesDir = %q, want %q", loaded.ModulesDir, DefaultModulesDir)
	}
	if loaded.DefaultMode != "copy" {
		t.Errorf("DefaultMode = %q, want %q", loaded.DefaultMode, "copy")
	}
	if loaded.Hosting.Visibility != "private" {
		t.Errorf("Hosting.Visibility = %q, want %q", loaded.Hosting.Visibility, "private")
	}
	if loaded.StrictMajor {
		t.Error("StrictMajor should default to false")
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(dir)
	if err == nil {
		t.Fatal("LoadConfig() should return error for missing file")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Version: 1,
			Hosting: HostingConfig{
				Host:       "https://gitlab.example.com",
				Org:        "game-modules",
				Visibility: "private",
			},
			ModulesDir:  "modules",
			DefaultMode: "copy",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}, wantErr: false},
		{name: "no version", mutate: func(c *Config) { c.Version = 0 }, wantErr: true},
		{name: "no host", mutate: func(c *Config) { c.Hosting.Host = "" }, wantErr: true},
		{name: "no org", mutate: func(c *Config) { c.Hosting.Org = "" }, wantErr: true},
		{name: "bad mode", mutate: func(c *Config) { c.DefaultMode = "symlink" }, wantErr: true},
		{name: "bad visibility", mutate: func(c *Config) { c.Hosting.Visibility = "secret" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := ValidateConfig(c)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigExists(t *testing.T) {
	dir := t.TempDir()

	if ConfigExists(dir) {
		t.Error("ConfigExists() should return false for empty dir")
	}

	os.WriteFile(filepath.Join(dir, ConfigFile), []byte("{}"), 0644)

	if !ConfigExists(dir) {
		t.Error("ConfigExists() should return true when file exists")
	}
}

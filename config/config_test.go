package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Execution.MaxCycles != 1000000 {
		t.Errorf("MaxCycles = %d, want 1000000", cfg.Execution.MaxCycles)
	}
	if cfg.Execution.StackCap != 0 {
		t.Errorf("StackCap = %d, want 0 (unbounded)", cfg.Execution.StackCap)
	}
	if cfg.CLI.Debug {
		t.Error("Debug should default to false")
	}
	if cfg.CLI.NumberFormat != "dec" {
		t.Errorf("NumberFormat = %q, want dec", cfg.CLI.NumberFormat)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Fatal("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("path = %s, want to end in config.toml", path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxCycles = 5000000
	cfg.Execution.StackCap = 4096
	cfg.CLI.Debug = true

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Execution.MaxCycles != 5000000 {
		t.Errorf("MaxCycles = %d, want 5000000", loaded.Execution.MaxCycles)
	}
	if loaded.Execution.StackCap != 4096 {
		t.Errorf("StackCap = %d, want 4096", loaded.Execution.StackCap)
	}
	if !loaded.CLI.Debug {
		t.Error("Debug should round-trip as true")
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does_not_exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom on missing file returned error: %v", err)
	}
	if cfg.Execution.MaxCycles != DefaultConfig().Execution.MaxCycles {
		t.Error("missing config file should yield default values")
	}
}

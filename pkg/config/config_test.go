package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies the default values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Processing.NumCores < 1 {
		t.Errorf("Expected at least one core, got %d", cfg.Processing.NumCores)
	}
	if cfg.Output.Gamma != 1 {
		t.Errorf("Expected linear output by default, got gamma %f", cfg.Output.Gamma)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

// TestLoadMissingConfig verifies that a missing file yields defaults
func TestLoadMissingConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.FocalStack.DeltaAlpha != DefaultConfig().FocalStack.DeltaAlpha {
		t.Error("Expected default values for a missing config file")
	}
}

// TestLoadPartialConfig verifies that unspecified fields keep their defaults
func TestLoadPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lfsynth.yaml")
	data := []byte("processing:\n  numCores: 3\noutput:\n  gamma: 2.2\n  verbose: false\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Processing.NumCores != 3 {
		t.Errorf("Expected 3 cores, got %d", cfg.Processing.NumCores)
	}
	if cfg.Output.Gamma != 2.2 || cfg.Output.Verbose {
		t.Errorf("Output section not applied: %+v", cfg.Output)
	}
	if cfg.Output.ViewScale != 4 {
		t.Errorf("Expected default view scale 4, got %d", cfg.Output.ViewScale)
	}
}

// TestLoadInvalidConfig verifies parse and validation errors
func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("processing: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(broken); err == nil {
		t.Error("Expected a parse error")
	}

	badStep := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badStep, []byte("focalStack:\n  deltaAlpha: 0\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(badStep); err == nil {
		t.Error("Expected a validation error for a zero alpha step")
	}
}

// TestSaveAndReload verifies that saved configs load back unchanged
func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lfsynth.yaml")

	cfg := DefaultConfig()
	cfg.FocalStack.MinAlpha = -2
	cfg.Output.IntermediaryDir = "debug"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Reloaded config differs:\n got %+v\nwant %+v", loaded, cfg)
	}
}

// TestCreateDefaultConfigFile verifies the default file is written
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lfsynth.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}

// Package config provides configuration loading and management for lfsynth.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel processing
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Default refocus range used by init-config and shown in help output
	FocalStack struct {
		MinAlpha   float64 `yaml:"minAlpha"`
		MaxAlpha   float64 `yaml:"maxAlpha"`
		DeltaAlpha float64 `yaml:"deltaAlpha"`
	} `yaml:"focalStack"`

	// Output parameters
	Output struct {
		// Gamma is applied when encoding output images (1 = linear)
		Gamma float64 `yaml:"gamma"`

		// JPEGQuality is used for .jpg outputs
		JPEGQuality int `yaml:"jpegQuality"`

		// GIFDelay is the frame delay of animated focal stacks in 100ths of a second
		GIFDelay int `yaml:"gifDelay"`

		// ViewScale is the upscaling factor for saved sub-aperture views
		ViewScale int `yaml:"viewScale"`

		// ContactCell is the width of each view in the contact sheet
		ContactCell int `yaml:"contactCell"`

		// SaveIntermediaryResults determines whether to save intermediary processing results
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is where intermediary results are written
		IntermediaryDir string `yaml:"intermediaryDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	// Set default focal stack parameters
	cfg.FocalStack.MinAlpha = -1
	cfg.FocalStack.MaxAlpha = 1
	cfg.FocalStack.DeltaAlpha = 0.1

	// Set default output parameters
	cfg.Output.Gamma = 1
	cfg.Output.JPEGQuality = 90
	cfg.Output.GIFDelay = 10
	cfg.Output.ViewScale = 4
	cfg.Output.ContactCell = 64
	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.Verbose = true

	return cfg
}

// Validate checks values that would make processing misbehave
func (c *Config) Validate() error {
	if c.Processing.NumCores < 0 {
		return fmt.Errorf("processing.numCores must not be negative, got %d", c.Processing.NumCores)
	}
	if c.FocalStack.DeltaAlpha <= 0 {
		return fmt.Errorf("focalStack.deltaAlpha must be positive, got %g", c.FocalStack.DeltaAlpha)
	}
	if c.Output.Gamma < 0 {
		return fmt.Errorf("output.gamma must not be negative, got %g", c.Output.Gamma)
	}
	if c.Output.JPEGQuality < 0 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpegQuality must be in [0, 100], got %d", c.Output.JPEGQuality)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

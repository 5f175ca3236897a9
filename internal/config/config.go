// Package config provides analysis configuration loading and management.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LngPattern is the series-name substring selected when ChooseLng is set.
const LngPattern = "Lng"

// Config represents the analysis configuration loaded from YAML.
type Config struct {
	// Detection parameters
	Detection struct {
		// MaximaTolerance is the prominence threshold for spot detection
		// on the filtered image's 0-255 intensity scale.
		MaximaTolerance float64 `yaml:"maximaTolerance"`

		// TopHatRadius is the background-removal filter radius in pixels.
		TopHatRadius int `yaml:"topHatRadius"`

		// MedianRadius is the denoise filter radius in pixels.
		MedianRadius int `yaml:"medianRadius"`

		// QuantChannel is the 1-indexed channel spots are counted on.
		QuantChannel int `yaml:"quantChannel"`
	} `yaml:"detection"`

	// Selection parameters
	Selection struct {
		// ChooseLng restricts processing to series whose name contains
		// the fixed lung-organoid naming pattern.
		ChooseLng bool `yaml:"chooseLng"`

		// SeriesPattern overrides the fixed pattern when non-empty.
		SeriesPattern string `yaml:"seriesPattern"`
	} `yaml:"selection"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Detection.MaximaTolerance = 20
	cfg.Detection.TopHatRadius = 6
	cfg.Detection.MedianRadius = 2
	cfg.Detection.QuantChannel = 2

	cfg.Selection.ChooseLng = false
	cfg.Selection.SeriesPattern = ""

	return cfg
}

// Pattern returns the effective series-name filter, or "" when all
// series should be processed.
func (c *Config) Pattern() string {
	if c.Selection.SeriesPattern != "" {
		return c.Selection.SeriesPattern
	}
	if c.Selection.ChooseLng {
		return LngPattern
	}
	return ""
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Package config provides configuration loading and management for the slice viewer.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Viewer holds the orchestrator settings shared by all panes.
type Viewer struct {
	// ZoomMin and ZoomMax bound the zoom factor (1.0 = fit to pane).
	ZoomMin float64 `yaml:"zoomMin"`
	ZoomMax float64 `yaml:"zoomMax"`

	// CrosshairColor is a hex color such as "#FFD500".
	CrosshairColor string `yaml:"crosshairColor"`

	// Background is the hex color outside the volume.
	Background string `yaml:"background"`
}

// Panes holds the layout of the slice panes.
type Panes struct {
	// Width and Height of each new surface in pixels. Height 0 means square.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Crosshairs controls whether cross-hairs are drawn initially.
	Crosshairs bool `yaml:"crosshairs"`

	// Planes lists the panes to open, by plane name.
	Planes []string `yaml:"planes"`
}

// Volume holds defaults applied to loaded image stacks.
type Volume struct {
	// VoxelSize is the physical voxel size in mm along X, Y and Z.
	VoxelSize [3]float64 `yaml:"voxelSize"`

	// Labels name the positive end of X, Y and Z, drawn at that edge of each
	// pane. An empty entry draws nothing.
	Labels [3]string `yaml:"labels"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	Viewer Viewer `yaml:"viewer"`
	Panes  Panes  `yaml:"panes"`
	Volume Volume `yaml:"volume"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Viewer: DefaultViewer(),
		Panes: Panes{
			Width:      300,
			Crosshairs: true,
			Planes:     []string{"axial", "coronal", "sagittal"},
		},
		Volume: Volume{
			VoxelSize: [3]float64{1, 1, 1},
			Labels:    [3]string{"R", "A", "S"},
		},
	}
}

// DefaultViewer returns the default orchestrator settings.
func DefaultViewer() Viewer {
	return Viewer{
		ZoomMin:        1,
		ZoomMax:        10,
		CrosshairColor: "#FFD500",
		Background:     "#000000",
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Viewer.ZoomMin <= 0 || c.Viewer.ZoomMax < c.Viewer.ZoomMin {
		return fmt.Errorf("invalid zoom range [%g, %g]", c.Viewer.ZoomMin, c.Viewer.ZoomMax)
	}
	if c.Panes.Width <= 0 || c.Panes.Height < 0 {
		return fmt.Errorf("invalid pane size %dx%d", c.Panes.Width, c.Panes.Height)
	}
	if len(c.Panes.Planes) == 0 {
		return fmt.Errorf("no panes configured")
	}
	return nil
}

// Load loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error in config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

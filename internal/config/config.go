package config

import (
	"encoding/json"
	"fmt"
	"os"

	"wartimes-fbx-exporter/internal/mesh"
)

// Config holds the shared pipeline settings: batch export and texture
// generation.
type Config struct {
	// Export settings
	OutputDir  string `json:"output_dir"`
	Workers    int    `json:"workers"`
	Merge      *bool  `json:"merge"` // nil = on
	MergeLeft  string `json:"merge_left"`
	MergeRight string `json:"merge_right"`

	// Texture settings
	TextureSize   int    `json:"texture_size"`
	TextureFormat string `json:"texture_format"`
	Supersample   int    `json:"supersample"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.NoMerge {
		off := false
		c.Merge = &off
	}
	if flags.MergeLeft != "" {
		c.MergeLeft = flags.MergeLeft
	}
	if flags.MergeRight != "" {
		c.MergeRight = flags.MergeRight
	}
	if flags.TextureSize > 0 {
		c.TextureSize = flags.TextureSize
	}
	if flags.TextureFormat != "" {
		c.TextureFormat = flags.TextureFormat
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}

	// Defaults
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.MergeLeft == "" {
		c.MergeLeft = mesh.DefaultLeftBone
	}
	if c.MergeRight == "" {
		c.MergeRight = mesh.DefaultRightBone
	}
	if c.TextureSize <= 0 {
		c.TextureSize = 256
	}
	if c.TextureFormat == "" {
		c.TextureFormat = "bmp"
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
}

// MergeEnabled reports whether rigid-attachment merging is on (the
// default when the config file leaves it unset).
func (c *Config) MergeEnabled() bool {
	return c.Merge == nil || *c.Merge
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir     string
	Workers       int
	NoMerge       bool
	MergeLeft     string
	MergeRight    string
	TextureSize   int
	TextureFormat string
	Supersample   int
}

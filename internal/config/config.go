// Package config loads the settings of the deformdemo command.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/gogpu/deform"
)

// Config holds the scene, animation and output settings.
type Config struct {
	// Mesh
	Rings  int     `json:"rings"`
	Sides  int     `json:"sides"`
	Bones  int     `json:"bones"`
	Radius float32 `json:"radius"`
	Length float32 `json:"length"`

	// Skinning
	BonesPerVertex int    `json:"bones_per_vertex"`
	Backend        string `json:"backend"`
	Normalize      string `json:"normalize"`
	Workers        int    `json:"workers"`

	// Animation
	Frames int     `json:"frames"`
	Bend   float32 `json:"bend"`
	Bulge  float32 `json:"bulge"`

	// Output
	OutputDir   string `json:"output_dir"`
	Format      string `json:"format"`
	ImageSize   int    `json:"image_size"`
	Supersample int    `json:"supersample"`
	GPU         bool   `json:"gpu"`
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

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir string
	Format    string
	Frames    int
	Workers   int
	Backend   string
	GPU       bool
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Backend != "" {
		c.Backend = flags.Backend
	}
	if flags.GPU {
		c.GPU = true
	}

	if c.Rings <= 1 {
		c.Rings = 24
	}
	if c.Sides <= 2 {
		c.Sides = 12
	}
	if c.Bones <= 0 {
		c.Bones = 4
	}
	if c.Radius <= 0 {
		c.Radius = 0.5
	}
	if c.Length <= 0 {
		c.Length = 4
	}
	if c.BonesPerVertex == 0 {
		c.BonesPerVertex = 4
	}
	if c.Backend == "" {
		c.Backend = "auto"
	}
	if c.Normalize == "" {
		c.Normalize = "fast"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Frames <= 0 {
		c.Frames = 8
	}
	if c.Bend == 0 {
		c.Bend = 1.2
	}
	if c.Bulge == 0 {
		c.Bulge = 1
	}
	if c.OutputDir == "" {
		c.OutputDir = "frames"
	}
	if c.Format == "" {
		c.Format = "png"
	}
	if c.ImageSize <= 0 {
		c.ImageSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	switch c.BonesPerVertex {
	case 1, 2, 4:
	default:
		return fmt.Errorf("config: bones_per_vertex must be 1, 2 or 4, got %d", c.BonesPerVertex)
	}
	if c.Bones > 1<<16 {
		return fmt.Errorf("config: %d bones exceed 16-bit indices", c.Bones)
	}
	switch c.Format {
	case "png", "webp", "tga":
	default:
		return fmt.Errorf("config: unknown image format %q", c.Format)
	}
	if _, err := c.SkinBackend(); err != nil {
		return err
	}
	if _, err := c.NormalizeMode(); err != nil {
		return err
	}
	return nil
}

// SkinBackend maps Backend to a kernel backend. "auto" selects the backend
// detected for the running CPU.
func (c *Config) SkinBackend() (deform.Backend, error) {
	name := strings.ToLower(c.Backend)
	if name == "auto" {
		return deform.DetectBackend(), nil
	}
	for _, b := range deform.Backends() {
		if b.String() == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("config: unknown backend %q", c.Backend)
}

// NormalizeMode maps Normalize to a normalization mode.
func (c *Config) NormalizeMode() (deform.NormalizeMode, error) {
	switch strings.ToLower(c.Normalize) {
	case "none":
		return deform.NormalizeNone, nil
	case "fast":
		return deform.NormalizeFast, nil
	case "fastest":
		return deform.NormalizeFastest, nil
	}
	return 0, fmt.Errorf("config: unknown normalize mode %q", c.Normalize)
}

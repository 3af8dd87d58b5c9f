package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds the runtime settings shared by the binaries.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir"`
	LevelFile  string `json:"level_file"`
	TextureDir string `json:"texture_dir"`
	OutputDir  string `json:"output_dir"`

	// Viewport
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Supersample int     `json:"supersample"`
	FOV         float64 `json:"fov"`
	Near        float64 `json:"near"`
	Far         float64 `json:"far"`

	// Portals
	MaxPortals int     `json:"max_portals"`
	Cooldown   float64 `json:"cooldown"`

	// Loop and capture
	Hz           int   `json:"hz"`
	Ticks        int   `json:"ticks"`
	Seed         int64 `json:"seed"`
	CaptureEvery int   `json:"capture_every"`
	Workers      int   `json:"workers"`
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
	BaseDir      string
	LevelFile    string
	OutputDir    string
	Width        int
	Height       int
	Supersample  int
	MaxPortals   int
	Hz           int
	Ticks        int
	Seed         int64
	CaptureEvery int
	Workers      int
}

// Resolve applies flags over the file values, then fills in defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.LevelFile != "" {
		c.LevelFile = flags.LevelFile
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.MaxPortals > 0 {
		c.MaxPortals = flags.MaxPortals
	}
	if flags.Hz > 0 {
		c.Hz = flags.Hz
	}
	if flags.Ticks > 0 {
		c.Ticks = flags.Ticks
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.CaptureEvery > 0 {
		c.CaptureEvery = flags.CaptureEvery
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.LevelFile = under(c.BaseDir, c.LevelFile)
		c.TextureDir = under(c.BaseDir, c.TextureDir)
		c.OutputDir = under(c.BaseDir, c.OutputDir)
	}
	if c.OutputDir == "" {
		c.OutputDir = "captures"
	}

	if c.Width <= 0 {
		c.Width = 320
	}
	if c.Height <= 0 {
		c.Height = 180
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.FOV <= 0 {
		c.FOV = 70
	}
	if c.Near <= 0 {
		c.Near = 0.1
	}
	if c.Far <= c.Near {
		c.Far = 200
	}
	if c.MaxPortals < 2 {
		c.MaxPortals = 2
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 0.3
	}
	if c.Hz <= 0 {
		c.Hz = 60
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// RenderSize is the internal framebuffer size including supersampling.
func (c Config) RenderSize() (w, h int) {
	return c.Width * c.Supersample, c.Height * c.Supersample
}

func under(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

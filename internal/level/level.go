package level

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
)

// Level describes a sandbox arena. Positions are world units, angles radians.
type Level struct {
	Name    string       `json:"name"`
	Floor   Floor        `json:"floor"`
	Walls   []Wall       `json:"walls"`
	Pillars []Pillar     `json:"pillars"`
	Props   []Prop       `json:"props"`
	Coins   []Vec        `json:"coins"`
	Spawn   Vec          `json:"spawn"`
	Portals []PortalSeed `json:"portals"`

	// TextureDir is searched for the texture names used by materials.
	TextureDir string `json:"texture_dir,omitempty"`
}

// Vec is a JSON triple.
type Vec [3]float64

func (v Vec) Vec3() mgl64.Vec3 { return mgl64.Vec3(v) }

type Floor struct {
	Size    float64 `json:"size"`
	Color   string  `json:"color"`
	Texture string  `json:"texture,omitempty"`
	// Eligible lets portals be placed on the floor.
	Eligible bool `json:"eligible"`
}

// Wall is a thin box slab that accepts portals.
type Wall struct {
	Position  Vec     `json:"position"`
	RotationY float64 `json:"rotation_y"`
	Scale     Vec     `json:"scale"`
	Color     string  `json:"color"`
	Texture   string  `json:"texture,omitempty"`
}

type Pillar struct {
	Position Vec     `json:"position"`
	Radius   float64 `json:"radius"`
	Height   float64 `json:"height"`
	Color    string  `json:"color"`
}

// Prop is a decorative solid: "box" uses Size as the edge length,
// "ico" as the radius.
type Prop struct {
	Kind     string  `json:"kind"`
	Position Vec     `json:"position"`
	Size     float64 `json:"size"`
	Color    string  `json:"color"`
}

// PortalSeed is a portal placed when the level starts.
type PortalSeed struct {
	Position Vec `json:"position"`
	Normal   Vec `json:"normal"`
}

// Load reads a level from a JSON file.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: read %s: %w", path, err)
	}
	var lv Level
	if err := json.Unmarshal(data, &lv); err != nil {
		return nil, fmt.Errorf("level: parse %s: %w", path, err)
	}
	if err := lv.Validate(); err != nil {
		return nil, fmt.Errorf("level: %s: %w", path, err)
	}
	return &lv, nil
}

// Save writes the level as indented JSON.
func (lv *Level) Save(path string) error {
	data, err := json.MarshalIndent(lv, "", "  ")
	if err != nil {
		return fmt.Errorf("level: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("level: write %s: %w", path, err)
	}
	return nil
}

// Validate checks sizes and colors.
func (lv *Level) Validate() error {
	if lv.Floor.Size < 0 {
		return fmt.Errorf("floor size %g is negative", lv.Floor.Size)
	}
	if _, err := ParseColor(lv.Floor.Color); err != nil {
		return fmt.Errorf("floor: %w", err)
	}
	for i, w := range lv.Walls {
		if w.Scale[0] <= 0 || w.Scale[1] <= 0 || w.Scale[2] <= 0 {
			return fmt.Errorf("wall %d: scale %v must be positive", i, w.Scale)
		}
		if _, err := ParseColor(w.Color); err != nil {
			return fmt.Errorf("wall %d: %w", i, err)
		}
	}
	for i, p := range lv.Pillars {
		if p.Radius <= 0 || p.Height <= 0 {
			return fmt.Errorf("pillar %d: radius and height must be positive", i)
		}
	}
	for i, p := range lv.Props {
		if p.Kind != "box" && p.Kind != "ico" {
			return fmt.Errorf("prop %d: unknown kind %q", i, p.Kind)
		}
	}
	for i, s := range lv.Portals {
		if s.Normal.Vec3().Len() == 0 {
			return fmt.Errorf("portal %d: zero normal", i)
		}
	}
	return nil
}

// ParseColor parses "#rrggbb". The empty string is mid grey.
func ParseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, nil
	}
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Default returns the built-in sandbox arena.
func Default() *Level {
	return &Level{
		Name:  "sandbox",
		Floor: Floor{Size: 30, Color: "#0b1221", Eligible: true},
		Walls: []Wall{
			{Position: Vec{-8, 2, 0}, RotationY: math.Pi / 2.2, Scale: Vec{3, 3, 0.6}, Color: "#132235"},
			{Position: Vec{8, 2, -2}, RotationY: -math.Pi / 3, Scale: Vec{3.4, 3, 0.6}, Color: "#0f1c2d"},
			{Position: Vec{0, 2.2, -8}, Scale: Vec{5.5, 3.4, 0.6}, Color: "#0f2135"},
			{Position: Vec{0, 1.8, 8}, RotationY: math.Pi, Scale: Vec{5, 2.8, 0.6}, Color: "#122a3f"},
		},
		Pillars: []Pillar{
			{Position: Vec{-6, 0, -4}, Radius: 0.6, Height: 3.2, Color: "#111827"},
			{Position: Vec{6, 0, -5}, Radius: 0.6, Height: 3.2, Color: "#111827"},
			{Position: Vec{-2, 0, 6}, Radius: 0.6, Height: 3.2, Color: "#111827"},
			{Position: Vec{4, 0, 5}, Radius: 0.6, Height: 3.2, Color: "#111827"},
		},
		Props: []Prop{
			{Kind: "box", Position: Vec{0, 0.7, 0}, Size: 1.4, Color: "#7dd3fc"},
			{Kind: "ico", Position: Vec{-3, 0.9, 3}, Size: 0.9, Color: "#38bdf8"},
			{Kind: "ico", Position: Vec{3, 0.8, -3}, Size: 0.8, Color: "#a78bfa"},
		},
		Coins: []Vec{
			{2.5, 1.2, -4},
			{-3.2, 1, -1.5},
			{0, 2, 3},
			{4, 1.5, 1.5},
			{-2, 3, 4.5},
			{1.5, 1, -6},
		},
		Spawn: Vec{0, 1.6, 6},
		Portals: []PortalSeed{
			{Position: Vec{-5.5, 1.4, -2}, Normal: Vec{1, 0, 0}},
			{Position: Vec{5.5, 1.5, 2}, Normal: Vec{-1, 0, 0}},
		},
	}
}

// CoinPositions returns the coin positions as vectors.
func (lv *Level) CoinPositions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(lv.Coins))
	for i, c := range lv.Coins {
		out[i] = c.Vec3()
	}
	return out
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*Level, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

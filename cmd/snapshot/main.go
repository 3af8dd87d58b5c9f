package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/app"
	"portal-sandbox/internal/capture"
	"portal-sandbox/internal/config"
	"portal-sandbox/internal/level"
	"portal-sandbox/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	levelFile := flag.String("level", "", "Level JSON (default: built-in sandbox)")
	outputDir := flag.String("output", ".", "Output directory")
	width := flag.Int("width", 0, "Output width (default: 320)")
	height := flag.Int("height", 0, "Output height (default: 180)")
	supersample := flag.Int("supersample", 2, "Render scale factor")
	x := flag.Float64("x", 0, "Viewer X (default: level spawn)")
	y := flag.Float64("y", 0, "Viewer Y")
	z := flag.Float64("z", 0, "Viewer Z")
	yaw := flag.Float64("yaw", 0, "Viewer yaw in degrees, 0 looks down -Z")
	pitch := flag.Float64("pitch", 0, "Viewer pitch in degrees")
	hud := flag.Bool("hud", false, "Burn counters into the main view")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		LevelFile:   *levelFile,
		OutputDir:   *outputDir,
		Width:       *width,
		Height:      *height,
		Supersample: *supersample,
	})

	lv, err := level.LoadOrDefault(cfg.LevelFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading level: %v\n", err)
		os.Exit(1)
	}
	var textures texture.Resolver
	if cfg.TextureDir != "" {
		textures = texture.NewCache(texture.BuildIndex(cfg.TextureDir))
	}

	a, err := app.New(cfg, lv, textures)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building scene: %v\n", err)
		os.Exit(1)
	}
	a.Init()
	defer a.Shutdown()

	pos := lv.Spawn.Vec3()
	if *x != 0 || *y != 0 || *z != 0 {
		pos = mgl64.Vec3{*x, *y, *z}
	}
	world := mgl64.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(*yaw))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(*pitch)))
	a.Viewer().SetWorldMatrix(world)

	// A zero-length step renders the pose as given.
	report, err := a.Tick(1e-9, app.Idle())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	view := capture.Downsample(a.Device().Screen().Snapshot(), cfg.Width, cfg.Height)
	if *hud {
		capture.Overlay(view, a.HUD().Lines())
	}
	out := filepath.Join(cfg.OutputDir, "frame.webp")
	if err := capture.EncodeFile(out, view); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Main view: %s\n", out)

	for _, p := range a.Portals().Poses() {
		fb := a.Portals().Target(p.Slot)
		if fb == nil || fb.Empty() {
			continue
		}
		img := capture.Downsample(fb.Snapshot(), cfg.Width, cfg.Height)
		out := filepath.Join(cfg.OutputDir, fmt.Sprintf("portal_%d.webp", p.Slot))
		if err := capture.EncodeFile(out, img); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Portal %d (%s) at (%.2f, %.2f, %.2f): %s\n", p.Slot, p.ColorTag, p.Position[0], p.Position[1], p.Position[2], out)
	}
	fmt.Printf("Links: %d, rendered: %d, skipped: %d\n", report.Links, report.Rendered, report.Skipped)
}

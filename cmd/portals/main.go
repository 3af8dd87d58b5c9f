package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"portal-sandbox/internal/app"
	"portal-sandbox/internal/capture"
	"portal-sandbox/internal/config"
	"portal-sandbox/internal/level"
	"portal-sandbox/internal/portal"
	"portal-sandbox/internal/texture"
	"portal-sandbox/internal/window"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	levelFile := flag.String("level", "", "Level JSON (default: built-in sandbox)")
	baseDir := flag.String("data", "", "Base directory for relative paths")
	outputDir := flag.String("output", "", "Capture directory (default: captures)")
	width := flag.Int("width", 0, "Output width (default: 320)")
	height := flag.Int("height", 0, "Output height (default: 180)")
	supersample := flag.Int("supersample", 0, "Render scale factor (default: 1)")
	maxPortals := flag.Int("max-portals", 0, "Portal capacity (default: 2)")
	headless := flag.Bool("headless", false, "Run without a window using the autopilot")
	fast := flag.Bool("fast", false, "Headless: do not pace ticks in real time")
	ticks := flag.Int("ticks", 0, "Headless: stop after N ticks (0 = until interrupted)")
	hz := flag.Int("hz", 0, "Tick rate (default: 60)")
	seed := flag.Int64("seed", 0, "Autopilot seed")
	shotEvery := flag.Int("shot-every", 90, "Autopilot: fire a portal every N ticks")
	captureEvery := flag.Int("capture-every", 0, "Write a WebP frame every N ticks (0 = off)")
	workers := flag.Int("workers", 0, "Capture encoder goroutines (default: NumCPU)")
	debug := flag.Bool("debug", false, "Window: show the debug overlay")
	verbose := flag.Bool("v", false, "Log portal events to stderr")

	flag.Parse()

	if *verbose {
		portal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		BaseDir:      *baseDir,
		LevelFile:    *levelFile,
		OutputDir:    *outputDir,
		Width:        *width,
		Height:       *height,
		Supersample:  *supersample,
		MaxPortals:   *maxPortals,
		Hz:           *hz,
		Ticks:        *ticks,
		Seed:         *seed,
		CaptureEvery: *captureEvery,
		Workers:      *workers,
	})

	lv, err := level.LoadOrDefault(cfg.LevelFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading level: %v\n", err)
		os.Exit(1)
	}

	texDir := cfg.TextureDir
	if texDir == "" && lv.TextureDir != "" {
		texDir = lv.TextureDir
		if cfg.LevelFile != "" && !filepath.IsAbs(texDir) {
			texDir = filepath.Join(filepath.Dir(cfg.LevelFile), texDir)
		}
	}
	var textures texture.Resolver
	if texDir != "" {
		texIndex := texture.BuildIndex(texDir)
		textures = texture.NewCache(texIndex)
		fmt.Printf("Textures: %d indexed\n", texIndex.Len())
	}

	a, err := app.New(cfg, lv, textures)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building scene: %v\n", err)
		os.Exit(1)
	}

	var writer *capture.Writer
	if cfg.CaptureEvery > 0 {
		writer, err = capture.NewWriter(capture.Options{
			Dir:     cfg.OutputDir,
			Width:   cfg.Width,
			Height:  cfg.Height,
			Workers: cfg.Workers,
			Overlay: true,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		a.SetCapture(writer)
		fmt.Printf("Capture: every %d ticks → %s\n", cfg.CaptureEvery, cfg.OutputDir)
	}

	a.Init()
	rw, rh := cfg.RenderSize()
	fmt.Printf("Level: %s, %d surfaces, %d portals\n", lv.Name, a.Surfaces().Len(), len(a.Portals().Poses()))
	fmt.Printf("Viewport: %dx%d (render %dx%d)\n", cfg.Width, cfg.Height, rw, rh)

	start := time.Now()
	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = app.RunHeadless(ctx, a, app.NewAutopilot(cfg.Seed, *shotEvery), app.HeadlessConfig{
			Hz:    cfg.Hz,
			Ticks: cfg.Ticks,
			Fast:  *fast,
		})
		stop()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	} else {
		err = window.Run(a, cfg.Width, cfg.Height, window.Options{TPS: cfg.Hz, Debug: *debug})
	}
	a.Shutdown()

	if writer != nil {
		if cerr := writer.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Warning: capture: %v\n", cerr)
		} else {
			fmt.Printf("Captured: %d images, manifest %s\n", writer.Written(), filepath.Join(cfg.OutputDir, "manifest.json"))
		}
	}

	hud := a.HUD()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs, %d ticks\n", time.Since(start).Seconds(), a.Ticks())
	fmt.Printf("Shots: %d, Teleports: %d, Coins: %d/%d\n", hud.Shots, hud.Teleports, hud.Coins, hud.CoinsTotal)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

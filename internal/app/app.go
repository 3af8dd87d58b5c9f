package app

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/capture"
	"portal-sandbox/internal/config"
	"portal-sandbox/internal/game"
	"portal-sandbox/internal/level"
	"portal-sandbox/internal/player"
	"portal-sandbox/internal/portal"
	"portal-sandbox/internal/raster"
	"portal-sandbox/internal/scene"
	"portal-sandbox/internal/texture"
)

// NoShot is the FrameInput.Shoot value for a tick without a placement.
const NoShot = -2

// FrameInput is one tick of user intent.
type FrameInput struct {
	Move player.Input
	// Shoot is a slot index, portal.AutoSlot for FIFO placement, or NoShot.
	Shoot int
	Reset bool
}

// Idle returns an input that does nothing.
func Idle() FrameInput { return FrameInput{Shoot: NoShot} }

var gunColor = color.NRGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff}

// App owns the scene and drives the portal system, the viewer and the coin
// field once per tick. It is not safe for concurrent use.
type App struct {
	cfg   config.Config
	level *level.Level

	graph    *scene.Graph
	device   *raster.Device
	surfaces *level.Surfaces
	portals  *portal.System
	viewer   *player.Viewer
	board    *game.Scoreboard
	coins    *game.CoinField
	gun      *scene.Node
	held     *player.HeldItem
	capture  *capture.Writer

	tick    int
	elapsed float64
	running bool
	last    portal.FrameReport
}

// New builds the level into a fresh scene. cfg must already be resolved.
// textures may be nil.
func New(cfg config.Config, lv *level.Level, textures texture.Resolver) (*App, error) {
	if lv == nil {
		lv = level.Default()
	}
	graph := scene.NewGraph()
	surfaces, err := lv.Build(graph, textures)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	w, h := cfg.RenderSize()
	proj := scene.Projection{
		FOV:    cfg.FOV,
		Near:   cfg.Near,
		Far:    cfg.Far,
		Aspect: float64(w) / float64(h),
	}
	viewer := player.NewViewer(lv.Spawn.Vec3(), proj)
	graph.Add(viewer.Node)

	gun := scene.NewMeshNode("gun", scene.Box(1, 0.4, 2), scene.Material{Color: gunColor})
	gun.Scale = mgl64.Vec3{0.25, 0.25, 0.25}
	gun.Position = mgl64.Vec3{0, -0.1, -0.2}
	graph.Add(gun)

	board := game.NewScoreboard()
	device := raster.NewDevice(graph, w, h)
	a := &App{
		cfg:      cfg,
		level:    lv,
		graph:    graph,
		device:   device,
		surfaces: surfaces,
		viewer:   viewer,
		board:    board,
		coins:    game.NewCoinField(graph, lv.CoinPositions(), board),
		gun:      gun,
		portals: portal.NewSystem(portal.Config{
			MaxPortals:  cfg.MaxPortals,
			Suppression: cfg.Cooldown,
		}, graph, device, surfaces, board),
	}
	return a, nil
}

// SetCapture makes Tick submit frames to w every cfg.CaptureEvery ticks.
func (a *App) SetCapture(w *capture.Writer) { a.capture = w }

// Init allocates render targets, places the level's starting portals and
// hands the gun to the viewer.
func (a *App) Init() {
	if a.running {
		return
	}
	w, h := a.cfg.RenderSize()
	a.portals.Init(w, h)
	a.seedPortals()
	a.held = player.Hold(a.graph, a.gun, a.viewer)
	a.running = true
}

func (a *App) seedPortals() {
	for _, p := range a.level.Portals {
		a.portals.PlaceAt(portal.AutoSlot, p.Position.Vec3(), p.Normal.Vec3())
	}
}

// Shutdown returns the gun to the scene root and releases the portal system.
func (a *App) Shutdown() {
	if !a.running {
		return
	}
	a.held.Release()
	a.held = nil
	a.portals.Shutdown()
	a.running = false
}

// Reset restarts the run: score, portals and viewer go back to the level's
// starting state.
func (a *App) Reset() {
	a.board.Reset()
	a.portals.Reset()
	if a.running {
		a.seedPortals()
	}
	a.viewer.SetWorldMatrix(mgl64.Translate3D(a.level.Spawn[0], a.level.Spawn[1], a.level.Spawn[2]))
	a.viewer.SetVelocity(mgl64.Vec3{})
	a.elapsed = 0
}

// Resize changes the output size and reallocates every render target.
func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.cfg.Width, a.cfg.Height = w, h
	rw, rh := a.cfg.RenderSize()
	a.device.ResizeScreen(rw, rh)
	a.viewer.SetAspect(float64(rw) / float64(rh))
	a.portals.Resize(rw, rh)
}

// Tick advances one frame of dt seconds and renders the main view.
func (a *App) Tick(dt float64, in FrameInput) (portal.FrameReport, error) {
	if !a.running {
		return portal.FrameReport{}, nil
	}
	if in.Reset {
		a.Reset()
	}
	if in.Shoot != NoShot {
		a.portals.Place(portal.PlacementRequest{Ray: a.viewer.Ray(), Slot: in.Shoot})
	}

	a.elapsed += dt
	a.viewer.Step(dt, in.Move)
	a.coins.Update(dt, a.elapsed, a.viewer.Position())
	a.held.Update(a.elapsed)

	report := a.portals.Tick(dt, a.viewer)
	a.last = report
	if err := a.portals.RenderMain(a.viewer); err != nil {
		return report, fmt.Errorf("app: render tick %d: %w", a.tick, err)
	}
	if err := a.captureFrame(); err != nil {
		return report, err
	}
	a.tick++
	return report, nil
}

func (a *App) captureFrame() error {
	if a.capture == nil || a.cfg.CaptureEvery <= 0 || a.tick%a.cfg.CaptureEvery != 0 {
		return nil
	}
	hud := a.HUD()
	pos := a.viewer.Position()
	if err := a.capture.Submit(capture.Frame{
		Tick: a.tick, Slot: capture.MainView, Image: a.device.Screen().Snapshot(), Viewer: pos, HUD: hud,
	}); err != nil {
		return fmt.Errorf("app: capture tick %d: %w", a.tick, err)
	}
	for _, p := range a.portals.Poses() {
		fb := a.portals.Target(p.Slot)
		if fb == nil || fb.Empty() {
			continue
		}
		if err := a.capture.Submit(capture.Frame{
			Tick: a.tick, Slot: p.Slot, Image: fb.Snapshot(), Viewer: pos, HUD: hud,
		}); err != nil {
			return fmt.Errorf("app: capture tick %d slot %d: %w", a.tick, p.Slot, err)
		}
	}
	return nil
}

// HUD returns the current counters.
func (a *App) HUD() capture.HUD {
	s := a.board.Snapshot()
	return capture.HUD{
		Tick:       a.tick,
		Shots:      s.Shots,
		Teleports:  s.Teleports,
		Coins:      len(s.Collected),
		CoinsTotal: a.coins.Len(),
	}
}

// Screen returns the main view rendered by the last Tick.
func (a *App) Screen() *image.NRGBA { return a.device.Screen().Image() }

func (a *App) Graph() *scene.Graph { return a.graph }
func (a *App) Device() *raster.Device { return a.device }
func (a *App) Portals() *portal.System { return a.portals }
func (a *App) Viewer() *player.Viewer { return a.viewer }
func (a *App) Scoreboard() *game.Scoreboard { return a.board }
func (a *App) Surfaces() *level.Surfaces { return a.surfaces }

// Ticks returns the number of completed ticks.
func (a *App) Ticks() int { return a.tick }

// LastReport returns the report of the most recent Tick.
func (a *App) LastReport() portal.FrameReport { return a.last }

package portal

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
	"portal-sandbox/internal/raster"
	"portal-sandbox/internal/scene"
)

// Config tunes the portal subsystem. Zero fields take the package defaults.
type Config struct {
	MaxPortals     int
	Suppression    float64
	ApertureWidth  float64
	ApertureHeight float64
	Slack          float64
}

// DefaultConfig returns the stock two-portal setup.
func DefaultConfig() Config {
	return Config{
		MaxPortals:     DefaultMaxPortals,
		Suppression:    DefaultSuppression,
		ApertureWidth:  ApertureWidth,
		ApertureHeight: ApertureHeight,
		Slack:          CrossingSlack,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxPortals <= 0 {
		c.MaxPortals = d.MaxPortals
	}
	if c.Suppression <= 0 {
		c.Suppression = d.Suppression
	}
	if c.ApertureWidth <= 0 {
		c.ApertureWidth = d.ApertureWidth
	}
	if c.ApertureHeight <= 0 {
		c.ApertureHeight = d.ApertureHeight
	}
	if c.Slack <= 0 {
		c.Slack = d.Slack
	}
	return c
}

// TeleportEvent describes a teleport executed during a tick.
type TeleportEvent struct {
	From Pose
	To   Pose
}

// FrameReport summarizes one Tick.
type FrameReport struct {
	Links    int
	Rendered int
	Skipped  int
	Teleport *TeleportEvent
}

// System is the portal subsystem: placement, virtual cameras, render
// targets, crossing detection, teleport and cooldowns, driven once per frame
// by Tick. It is not safe for concurrent use.
type System struct {
	cfg      Config
	graph    *scene.Graph
	device   Device
	surfaces SurfaceSet
	sink     EventSink

	registry  *Registry
	crossing  *CrossingDetector
	cooldowns *Cooldowns
	targets   *RenderTargets
	displays  []*scene.Node
	cameras   map[int]scene.Camera
	running   bool
}

// NewSystem wires the subsystem to its collaborators. sink may be nil.
func NewSystem(cfg Config, graph *scene.Graph, device Device, surfaces SurfaceSet, sink EventSink) *System {
	cfg = cfg.withDefaults()
	if sink == nil {
		sink = nopSink{}
	}
	return &System{
		cfg:       cfg,
		graph:     graph,
		device:    device,
		surfaces:  surfaces,
		sink:      sink,
		registry:  NewRegistry(cfg.MaxPortals),
		crossing:  NewCrossingDetector(cfg.ApertureWidth, cfg.ApertureHeight, cfg.Slack),
		cooldowns: NewCooldowns(),
		cameras:   make(map[int]scene.Camera),
	}
}

// Init allocates one w×h render target and one display node per slot.
// Calling Init twice is a no-op.
func (s *System) Init(w, h int) {
	if s.running {
		return
	}
	s.targets = NewRenderTargets(s.device, s.cfg.MaxPortals, w, h)
	s.displays = make([]*scene.Node, s.cfg.MaxPortals)
	for slot := range s.displays {
		d := newDisplay(slot, s.cfg.ApertureWidth, s.cfg.ApertureHeight)
		s.graph.Add(d)
		s.displays[slot] = d
	}
	s.running = true
	s.refreshDisplays()
	Logger().Info("portal: init", "slots", s.cfg.MaxPortals, "width", w, "height", h)
}

// Shutdown detaches display nodes and releases targets and state.
func (s *System) Shutdown() {
	if !s.running {
		return
	}
	for _, d := range s.displays {
		d.Detach()
	}
	s.displays = nil
	s.targets = nil
	s.clearState()
	s.running = false
	Logger().Info("portal: shutdown")
}

// Place resolves req against the eligible surfaces and commits the result.
// A miss, an out-of-range slot or a stopped system leaves every piece of
// state untouched.
func (s *System) Place(req PlacementRequest) (Pose, bool) {
	if !s.running {
		return Pose{}, false
	}
	if req.Slot != AutoSlot && (req.Slot < 0 || req.Slot >= s.registry.Cap()) {
		Logger().Debug("portal: slot out of range", "slot", req.Slot)
		return Pose{}, false
	}
	pl, ok := ResolvePlacement(s.surfaces, req.Ray)
	if !ok {
		Logger().Debug("portal: placement ray missed")
		return Pose{}, false
	}
	pose, ok := s.commit(req.Slot, pl)
	if ok {
		s.sink.AddShot()
	}
	return pose, ok
}

// PlaceAt commits a pose directly, without a ray. Level scripts use it for
// initial portals.
func (s *System) PlaceAt(slot int, position, normal mgl64.Vec3) (Pose, bool) {
	if !s.running {
		return Pose{}, false
	}
	return s.commit(slot, NewPlacement(position, normal))
}

func (s *System) commit(slot int, pl Placement) (Pose, bool) {
	var pose Pose
	if slot == AutoSlot {
		var evicted []Pose
		pose, evicted = s.registry.Insert(pl)
		for _, e := range evicted {
			s.forget(e.ID)
			Logger().Info("portal: evicted", "id", e.ID, "slot", e.Slot)
		}
	} else {
		var replaced, ok bool
		pose, replaced, ok = s.registry.Replace(slot, pl)
		if !ok {
			return Pose{}, false
		}
		if replaced {
			s.forget(pose.ID)
		}
	}
	for _, p := range s.registry.Poses() {
		if !p.Active {
			s.forget(p.ID)
		}
	}
	s.refreshDisplays()
	Logger().Info("portal: placed", "id", pose.ID, "slot", pose.Slot, "tag", pose.ColorTag,
		"position", fmtVec(pose.Position), "normal", fmtVec(pose.Normal))
	return pose, true
}

// Reset clears the registry together with every crossing and cooldown entry.
// Render targets are kept.
func (s *System) Reset() {
	s.clearState()
	if s.running {
		s.refreshDisplays()
	}
	Logger().Info("portal: reset")
}

func (s *System) clearState() {
	s.registry.Reset()
	s.crossing.Reset()
	s.cooldowns.Reset()
	clear(s.cameras)
}

func (s *System) forget(id int) {
	s.crossing.Forget(id)
	s.cooldowns.Forget(id)
}

// Resize reallocates render targets for a new viewport.
func (s *System) Resize(w, h int) {
	if !s.running {
		return
	}
	if s.targets.Resize(w, h) {
		s.refreshDisplays()
	}
}

// Tick runs one frame: virtual cameras, virtual render passes, crossing
// detection with at most one teleport, then cooldown decay. The caller
// renders the main view afterwards with RenderMain.
func (s *System) Tick(dt float64, viewer Viewer) FrameReport {
	var report FrameReport
	if !s.running || viewer == nil {
		return report
	}
	links := s.registry.Links()
	report.Links = len(links)

	valid := make([]Link, 0, len(links))
	passes := make([]Pass, 0, len(links))
	viewerWorld := viewer.WorldMatrix()
	proj := viewer.Projection()
	for _, l := range links {
		if !s.displayReady(l.Source.Slot) || !s.displayReady(l.Dest.Slot) {
			Logger().Debug("portal: display missing, link skipped", "source", l.Source.ID, "dest", l.Dest.ID)
			report.Skipped++
			continue
		}
		cam := SyncCamera(l, viewerWorld, proj)
		s.cameras[l.Dest.Slot] = cam
		passes = append(passes, Pass{Link: l, Camera: cam})
		valid = append(valid, l)
	}
	report.Rendered = s.targets.Submit(passes, s.displays)

	for _, l := range valid {
		if report.Teleport != nil {
			break
		}
		pos := mathutil.TransformPoint(viewer.WorldMatrix(), mgl64.Vec3{})
		if !s.crossing.Check(l.Source, pos, s.cooldowns.Get(l.Source.ID)) {
			continue
		}
		Teleport(l, viewer)
		s.cooldowns.Set(l.Source.ID, s.cfg.Suppression)
		emerged := mathutil.TransformPoint(viewer.WorldMatrix(), mgl64.Vec3{})
		s.crossing.Seed(l.Dest.ID, l.Dest.Local(emerged)[2])
		s.sink.AddTeleport()
		report.Teleport = &TeleportEvent{From: l.Source, To: l.Dest}
		Logger().Info("portal: teleport", "from", l.Source.ID, "to", l.Dest.ID, "position", fmtVec(emerged))
	}

	s.cooldowns.Tick(dt)
	return report
}

// RenderMain renders the viewer's own view into the default framebuffer.
func (s *System) RenderMain(viewer Viewer) error {
	s.device.SetRenderTarget(nil)
	return s.device.Render(scene.Camera{World: viewer.WorldMatrix(), Projection: viewer.Projection()})
}

// Poses returns a copy of the placed poses, oldest first.
func (s *System) Poses() []Pose { return s.registry.Poses() }

// Cooldown returns the remaining suppression of a portal id.
func (s *System) Cooldown(id int) float64 { return s.cooldowns.Get(id) }

// StateSizes reports the number of poses, crossing entries and cooldown
// entries held.
func (s *System) StateSizes() (poses, crossings, cooldowns int) {
	return s.registry.Len(), s.crossing.Len(), s.cooldowns.Len()
}

// Target returns the render target of a slot.
func (s *System) Target(slot int) *raster.FrameBuffer { return s.targets.Target(slot) }

// TargetAllocations counts render target allocations since Init.
func (s *System) TargetAllocations() int {
	if s.targets == nil {
		return 0
	}
	return s.targets.Allocations()
}

// VirtualCamera returns the last camera used to fill a slot's target.
func (s *System) VirtualCamera(slot int) (scene.Camera, bool) {
	c, ok := s.cameras[slot]
	return c, ok
}

// Display returns the display node of a slot.
func (s *System) Display(slot int) *scene.Node {
	if slot < 0 || slot >= len(s.displays) {
		return nil
	}
	return s.displays[slot]
}

func (s *System) displayReady(slot int) bool {
	d := s.Display(slot)
	return d != nil && d.Attached(s.graph.Root)
}

// refreshDisplays poses each slot's display node from the registry and binds
// its surface to the partner's target.
func (s *System) refreshDisplays() {
	for slot, d := range s.displays {
		pose, ok := s.registry.BySlot(slot)
		d.Visible = ok
		if !ok {
			continue
		}
		d.SetWorldMatrix(pose.WorldMatrix())
		surface := displaySurface(d)
		if surface == nil {
			continue
		}
		surface.Material.Texture = nil
		if partner, ok := s.registry.Partner(pose.ID); ok {
			if fb := s.targets.Target(partner.Slot); fb != nil {
				surface.Material.Texture = fb.Image()
			}
		}
	}
}

// newDisplay builds the visual of a slot: an aperture surface plus a ring in
// the slot color. Hidden until a pose occupies the slot.
func newDisplay(slot int, w, h float64) *scene.Node {
	tint := TagColor(TagForSlot(slot))
	group := scene.NewNode(fmt.Sprintf("portal_%d", slot))
	group.Visible = false

	surface := scene.NewMeshNode("surface", scene.Plane(w, h), scene.Material{
		Color:       dim(tint),
		ScreenSpace: true,
		Unlit:       true,
	})
	group.Add(surface)

	const t, depth = 0.08, 0.04
	ring := []struct{ x, y, w, h float64 }{
		{0, h/2 + t/2, w + 2*t, t},
		{0, -h/2 - t/2, w + 2*t, t},
		{-w/2 - t/2, 0, t, h},
		{w/2 + t/2, 0, t, h},
	}
	for i, r := range ring {
		bar := scene.NewMeshNode(fmt.Sprintf("ring_%d", i), scene.Box(r.w, r.h, depth), scene.Material{Color: tint, Unlit: true})
		bar.Position = mgl64.Vec3{r.x, r.y, 0}
		group.Add(bar)
	}
	return group
}

func displaySurface(d *scene.Node) *scene.Node {
	for _, c := range d.Children() {
		if c.Name == "surface" {
			return c
		}
	}
	return nil
}

func dim(c color.NRGBA) color.NRGBA {
	return color.NRGBA{R: c.R / 4, G: c.G / 4, B: c.B / 4, A: 0xff}
}

func fmtVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}

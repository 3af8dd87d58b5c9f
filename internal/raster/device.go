package raster

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/scene"
)

// ErrNoTarget is returned when a render is issued with no pixels to draw into.
var ErrNoTarget = errors.New("raster: no render target")

// Background is the default clear color.
var Background = color.NRGBA{R: 0x06, G: 0x09, B: 0x15, A: 0xff}

// Device renders a scene graph into whichever FrameBuffer is currently bound.
// Binding nil selects the default framebuffer (the screen).
type Device struct {
	graph  *scene.Graph
	screen *FrameBuffer
	bound  *FrameBuffer

	Light      LightConfig
	Background color.NRGBA
}

// NewDevice creates a device with a w×h default framebuffer bound.
func NewDevice(graph *scene.Graph, w, h int) *Device {
	screen := NewFrameBuffer(w, h)
	return &Device{
		graph:      graph,
		screen:     screen,
		bound:      screen,
		Light:      DefaultLightConfig(),
		Background: Background,
	}
}

// Screen returns the default framebuffer.
func (d *Device) Screen() *FrameBuffer { return d.screen }

// Bound returns the framebuffer the next Render writes to.
func (d *Device) Bound() *FrameBuffer { return d.bound }

// SetRenderTarget binds fb for subsequent renders; nil rebinds the screen.
func (d *Device) SetRenderTarget(fb *FrameBuffer) {
	if fb == nil {
		fb = d.screen
	}
	d.bound = fb
}

// ResizeScreen reallocates the default framebuffer.
func (d *Device) ResizeScreen(w, h int) {
	d.screen.Resize(w, h)
}

// Render clears the bound target and draws every visible mesh as seen by cam.
func (d *Device) Render(cam scene.Camera) error {
	fb := d.bound
	if fb.Empty() {
		return fmt.Errorf("raster: render: %w", ErrNoTarget)
	}
	fb.Clear(d.Background)

	fc := &frameCamera{
		viewProj: cam.Projection.Matrix().Mul4(cam.View()),
		eye:      cam.Position(),
		clip:     cam.Clip,
		hasClip:  cam.HasClip,
	}
	d.graph.VisitVisible(func(n *scene.Node, world mgl64.Mat4) {
		drawMesh(fb, n.Mesh, &n.Material, world, fc, &d.Light)
	})
	return nil
}

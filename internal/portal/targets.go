package portal

import (
	"portal-sandbox/internal/raster"
	"portal-sandbox/internal/scene"
)

// Device is the renderer the portal passes are submitted to. Binding nil
// selects the default framebuffer.
type Device interface {
	SetRenderTarget(fb *raster.FrameBuffer)
	Render(cam scene.Camera) error
}

// Pass is one virtual render: the view through Link.Source, written into
// the destination slot's target.
type Pass struct {
	Link   Link
	Camera scene.Camera
}

// RenderTargets owns one offscreen target per slot. Targets are allocated
// once and only reallocated by Resize.
type RenderTargets struct {
	device      Device
	targets     []*raster.FrameBuffer
	width       int
	height      int
	allocations int
}

// NewRenderTargets allocates slots targets of w×h.
func NewRenderTargets(device Device, slots, w, h int) *RenderTargets {
	rt := &RenderTargets{device: device, width: w, height: h}
	rt.targets = make([]*raster.FrameBuffer, slots)
	for i := range rt.targets {
		rt.targets[i] = raster.NewFrameBuffer(w, h)
		rt.allocations++
	}
	return rt
}

// Target returns the target of slot, or nil.
func (rt *RenderTargets) Target(slot int) *raster.FrameBuffer {
	if rt == nil || slot < 0 || slot >= len(rt.targets) {
		return nil
	}
	return rt.targets[slot]
}

func (rt *RenderTargets) Len() int { return len(rt.targets) }

// Allocations counts buffer allocations since creation.
func (rt *RenderTargets) Allocations() int { return rt.allocations }

// Resize reallocates every target for a new viewport. Same-size calls do
// nothing. Target pointers stay valid; their Image views do not.
func (rt *RenderTargets) Resize(w, h int) bool {
	if w == rt.width && h == rt.height {
		return false
	}
	rt.width, rt.height = w, h
	for _, fb := range rt.targets {
		fb.Resize(w, h)
		rt.allocations++
	}
	return true
}

// Submit renders every pass with the exclude nodes hidden, then rebinds the
// default framebuffer. Visibility and binding are restored even if a render
// panics. A failing pass is logged and skipped; it returns the number of
// passes that rendered.
func (rt *RenderTargets) Submit(passes []Pass, exclude []*scene.Node) int {
	rendered := 0
	_ = scene.WithHidden(exclude, func() error {
		defer rt.device.SetRenderTarget(nil)
		for _, p := range passes {
			fb := rt.Target(p.Link.Dest.Slot)
			if fb == nil {
				Logger().Debug("portal: no target for slot", "slot", p.Link.Dest.Slot)
				continue
			}
			rt.device.SetRenderTarget(fb)
			if err := rt.device.Render(p.Camera); err != nil {
				Logger().Warn("portal: virtual pass failed", "source", p.Link.Source.ID, "dest", p.Link.Dest.ID, "err", err)
				continue
			}
			rendered++
		}
		return nil
	})
	return rendered
}

package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/scene"
)

// HeldOffset places a held item right of, below and ahead of the eye.
var HeldOffset = mgl64.Vec3{0.55, -0.6, -1.7}

// HeldItem is an item carried on the viewer's camera node. It belongs to its
// original parent again once Release is called.
type HeldItem struct {
	att *scene.Attachment
}

// Hold moves item onto the viewer and poses it at HeldOffset.
func Hold(graph *scene.Graph, item *scene.Node, v *Viewer) *HeldItem {
	att := graph.Reparent(item, v.Node)
	item.Position = HeldOffset
	item.Rotation = mgl64.AnglesToQuat(-0.05, math.Pi, 0.1, mgl64.XYZ)
	return &HeldItem{att: att}
}

// Update applies the idle bob for time t in seconds.
func (h *HeldItem) Update(t float64) {
	if h == nil {
		return
	}
	n := h.att.Node()
	s := t * 2
	n.Position[2] = HeldOffset[2] - math.Sin(s)*0.04
	n.Rotation = mgl64.AnglesToQuat(-0.05, math.Pi, 0.04*math.Sin(s*1.8), mgl64.XYZ)
}

// Release returns the item to its original parent. Safe to call twice.
func (h *HeldItem) Release() {
	if h == nil {
		return
	}
	h.att.Release()
}

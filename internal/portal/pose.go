package portal

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
)

const (
	// PlacementOffset lifts a portal off its host surface along the normal.
	PlacementOffset = 0.02

	// CrossingSlack is the depth tolerance of the crossing test.
	CrossingSlack = 0.02

	// ApertureWidth and ApertureHeight are the portal footprint in its own
	// frame (X across, Y up).
	ApertureWidth  = 1.6
	ApertureHeight = 2.6

	// DefaultSuppression is the cooldown applied to a source portal after it
	// teleports the viewer, in seconds.
	DefaultSuppression = 0.3

	// DefaultMaxPortals is the registry capacity.
	DefaultMaxPortals = 2

	// AutoSlot asks Place to append to the FIFO instead of re-placing a slot.
	AutoSlot = -1
)

// DefaultNormal replaces a hit normal that degenerates to zero length.
var DefaultNormal = mgl64.Vec3{0, 0, 1}

// ColorTags names slot colors in order. Slots past the end wrap around.
var ColorTags = []string{"orange", "cyan", "violet", "lime", "rose"}

var tagColors = map[string]color.NRGBA{
	"orange": {R: 0xff, G: 0x9a, B: 0x3c, A: 0xff},
	"cyan":   {R: 0x3c, G: 0xd8, B: 0xff, A: 0xff},
	"violet": {R: 0xa0, G: 0x6c, B: 0xff, A: 0xff},
	"lime":   {R: 0x9c, G: 0xf0, B: 0x4a, A: 0xff},
	"rose":   {R: 0xff, G: 0x5c, B: 0x8a, A: 0xff},
}

// TagForSlot returns the color tag of a render slot.
func TagForSlot(slot int) string {
	if slot < 0 {
		return ""
	}
	return ColorTags[slot%len(ColorTags)]
}

// TagColor returns the display color of a tag.
func TagColor(tag string) color.NRGBA {
	if c, ok := tagColors[tag]; ok {
		return c
	}
	return color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
}

// Pose is a placed portal. Poses are values; the registry hands out copies.
type Pose struct {
	ID          int
	Slot        int
	Position    mgl64.Vec3
	Normal      mgl64.Vec3
	Orientation mgl64.Quat
	ColorTag    string

	// Active poses take part in the link. Older poses are display-only.
	Active bool
}

// WorldMatrix returns the portal-to-world transform. The portal faces its
// local +Z.
func (p Pose) WorldMatrix() mgl64.Mat4 {
	return mgl64.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(p.Orientation.Mat4())
}

// Local maps a world point into the portal's frame.
func (p Pose) Local(world mgl64.Vec3) mgl64.Vec3 {
	return mathutil.TransformPoint(p.WorldMatrix().Inv(), world)
}

// Link is a directed source → destination relationship.
type Link struct {
	Source Pose
	Dest   Pose
}

// Transform returns W(D)·Flip180Y·inv(W(S)), the map that carries anything
// entering the source out of the destination.
func (l Link) Transform() mgl64.Mat4 {
	return l.Dest.WorldMatrix().Mul4(mathutil.Flip180Y).Mul4(l.Source.WorldMatrix().Inv())
}

// Reverse returns the link in the other direction.
func (l Link) Reverse() Link { return Link{Source: l.Dest, Dest: l.Source} }

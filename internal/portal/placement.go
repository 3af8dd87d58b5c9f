package portal

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
	"portal-sandbox/internal/scene"
)

// SurfaceSet is the set of portal-eligible surfaces supplied by the level.
type SurfaceSet interface {
	Raycast(ray scene.Ray) (scene.Hit, bool)
}

// Placement is a resolved portal pose before it enters the registry.
type Placement struct {
	Position    mgl64.Vec3
	Normal      mgl64.Vec3
	Orientation mgl64.Quat
}

// PlacementRequest asks for a portal where Ray meets an eligible surface.
// Slot is AutoSlot for FIFO insertion or a slot index to re-place.
type PlacementRequest struct {
	Ray  scene.Ray
	Slot int
}

// ResolvePlacement casts ray against surfaces and derives the portal pose at
// the nearest hit. A miss returns false.
func ResolvePlacement(surfaces SurfaceSet, ray scene.Ray) (Placement, bool) {
	if surfaces == nil {
		return Placement{}, false
	}
	hit, ok := surfaces.Raycast(ray)
	if !ok {
		return Placement{}, false
	}
	normal := WorldNormal(hit.Node.WorldMatrix(), hit.LocalNormal)
	return NewPlacement(hit.Point.Add(normal.Mul(PlacementOffset)), normal), true
}

// NewPlacement builds a placement at position facing normal. The position is
// used as given.
func NewPlacement(position, normal mgl64.Vec3) Placement {
	if normal.Len() < 1e-9 {
		normal = DefaultNormal
	}
	normal = normal.Normalize()
	return Placement{
		Position:    position,
		Normal:      normal,
		Orientation: mathutil.ShortestArc(mathutil.CanonicalForward, normal),
	}
}

// WorldNormal carries a local-space normal into world space with the
// inverse-transpose of world's upper 3×3. Singular transforms and degenerate
// results fall back to DefaultNormal.
func WorldNormal(world mgl64.Mat4, local mgl64.Vec3) mgl64.Vec3 {
	if math.Abs(world.Mat3().Det()) < 1e-18 {
		return DefaultNormal
	}
	n := mathutil.NormalMatrix(world).Mul3x1(local)
	if n.Len() < 1e-9 {
		return DefaultNormal
	}
	return n.Normalize()
}

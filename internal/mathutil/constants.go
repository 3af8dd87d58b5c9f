package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Fixed frames shared by placement, camera sync and teleport.
var (
	// CanonicalForward is the local axis a portal aperture faces along.
	CanonicalForward = mgl64.Vec3{0, 0, 1}

	// WorldUp is the +Y axis.
	WorldUp = mgl64.Vec3{0, 1, 0}

	// CameraForward is the axis a camera looks down in its own frame (GL convention).
	CameraForward = mgl64.Vec3{0, 0, -1}

	// Flip180Y turns "entering through the source" into "leaving the destination":
	// a half turn about the portal's local up axis.
	Flip180Y = mgl64.HomogRotate3DY(math.Pi)
)

// AngleDist returns the shortest angular distance between two angles in radians (0–π).
func AngleDist(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	if d > math.Pi {
		return 2*math.Pi - d
	}
	return d
}

package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
)

// Projection holds perspective intrinsics. FOV is vertical, in degrees.
type Projection struct {
	FOV    float64
	Near   float64
	Far    float64
	Aspect float64
}

// Matrix returns the GL-style perspective matrix (NDC z in [-1, 1]).
func (p Projection) Matrix() mgl64.Mat4 {
	fov, near, far, aspect := p.FOV, p.Near, p.Far, p.Aspect
	if fov <= 0 {
		fov = 70
	}
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = near + 1000
	}
	if aspect <= 0 {
		aspect = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(fov), aspect, near, far)
}

// Camera is a posed projection. World is the camera-to-world transform; the
// camera looks down its local -Z.
type Camera struct {
	World      mgl64.Mat4
	Projection Projection

	// Clip is an optional world-space plane (n, d); geometry with
	// n·p + d < 0 is cut away. Portal cameras use it to drop whatever sits
	// between them and the portal they look out of.
	Clip    mgl64.Vec4
	HasClip bool
}

// ClipPlaneAt returns the plane through point with the given normal, keeping
// the side the normal points to.
func ClipPlaneAt(point, normal mgl64.Vec3) mgl64.Vec4 {
	n := normal.Normalize()
	return n.Vec4(-n.Dot(point))
}

// View returns the world-to-camera transform.
func (c Camera) View() mgl64.Mat4 { return c.World.Inv() }

func (c Camera) Position() mgl64.Vec3 { return c.World.Col(3).Vec3() }

// Forward returns the unit viewing direction in world space.
func (c Camera) Forward() mgl64.Vec3 {
	return mathutil.TransformDir(c.World, mathutil.CameraForward).Normalize()
}

// Ray returns a ray from the camera centre along its viewing direction.
func (c Camera) Ray() Ray {
	return Ray{Origin: c.Position(), Dir: c.Forward()}
}

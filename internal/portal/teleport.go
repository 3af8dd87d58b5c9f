package portal

import (
	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
	"portal-sandbox/internal/scene"
)

// Viewer is the locomotion collaborator's camera: its pose and velocity are
// read every tick and overwritten by a teleport.
type Viewer interface {
	WorldMatrix() mgl64.Mat4
	SetWorldMatrix(m mgl64.Mat4)
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	Projection() scene.Projection
}

// Teleport re-poses viewer through link and rotates its velocity by the
// rotation part of the link transform.
func Teleport(link Link, viewer Viewer) {
	t := link.Transform()
	pos, rot, scale := mathutil.Decompose(t.Mul4(viewer.WorldMatrix()))
	viewer.SetWorldMatrix(mathutil.Compose(pos, rot, scale))
	viewer.SetVelocity(RotateVelocity(t, viewer.Velocity()))
}

// RotateVelocity applies the rotation-only component of t to v. Translation
// and scale are stripped, so |result| == |v|.
func RotateVelocity(t mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return mathutil.RotationOnly(t).Rotate(v)
}

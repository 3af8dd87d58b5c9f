package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShortestArc returns the minimal rotation taking direction from onto direction to.
// Antiparallel inputs rotate half a turn about an axis perpendicular to from.
func ShortestArc(from, to mgl64.Vec3) mgl64.Quat {
	from = from.Normalize()
	to = to.Normalize()
	d := from.Dot(to)
	if d >= 1-1e-12 {
		return mgl64.QuatIdent()
	}
	if d <= -1+1e-9 {
		axis := mgl64.Vec3{1, 0, 0}.Cross(from)
		if axis.Len() < 1e-6 {
			axis = mgl64.Vec3{0, 1, 0}.Cross(from)
		}
		return mgl64.QuatRotate(math.Pi, axis.Normalize())
	}
	axis := from.Cross(to)
	return mgl64.Quat{W: 1 + d, V: axis}.Normalize()
}

// YawPitch builds a camera orientation: yaw about world up, then pitch about local X.
// Yaw 0 and pitch 0 look down -Z.
func YawPitch(yaw, pitch float64) mgl64.Quat {
	return mgl64.QuatRotate(yaw, WorldUp).Mul(mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0})).Normalize()
}

// YawPitchFromForward inverts YawPitch for a camera forward axis.
func YawPitchFromForward(f mgl64.Vec3) (yaw, pitch float64) {
	f = f.Normalize()
	pitch = math.Asin(mgl64.Clamp(f[1], -1, 1))
	yaw = math.Atan2(-f[0], -f[2])
	return yaw, pitch
}

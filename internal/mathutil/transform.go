package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Compose builds T·R·S.
func Compose(pos mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// Decompose splits an affine matrix into translation, rotation and scale.
// A negative determinant is folded into the X scale.
func Decompose(m mgl64.Mat4) (pos mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) {
	pos = m.Col(3).Vec3()
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Det() < 0 {
		sx = -sx
	}
	scale = mgl64.Vec3{sx, sy, sz}
	rot = RotationOnly(m)
	return pos, rot, scale
}

// RotationOnly strips translation and scale from m and returns the remaining
// rotation. Degenerate axes yield the identity.
func RotationOnly(m mgl64.Mat4) mgl64.Quat {
	var r mgl64.Mat4
	det := m.Det()
	for c := 0; c < 3; c++ {
		col := m.Col(c).Vec3()
		l := col.Len()
		if l < 1e-12 {
			return mgl64.QuatIdent()
		}
		if c == 0 && det < 0 {
			l = -l
		}
		col = col.Mul(1 / l)
		r.SetCol(c, col.Vec4(0))
	}
	r.SetCol(3, mgl64.Vec4{0, 0, 0, 1})
	return mgl64.Mat4ToQuat(r).Normalize()
}

// NormalMatrix returns transpose(inverse(upper3x3(m))), the matrix that carries
// surface normals into world space under non-uniform scale.
func NormalMatrix(m mgl64.Mat4) mgl64.Mat3 {
	upper := m.Mat3()
	if math.Abs(upper.Det()) < 1e-18 {
		return mgl64.Ident3()
	}
	return upper.Inv().Transpose()
}

// TransformPoint applies m to p with w=1.
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDir applies m to d with w=0.
func TransformDir(m mgl64.Mat4, d mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

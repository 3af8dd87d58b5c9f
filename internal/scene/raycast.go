package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
)

// Ray is a half-line in world space.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// Hit describes the nearest intersection found by Raycast.
type Hit struct {
	Node     *Node
	Point    mgl64.Vec3
	Distance float64
	Triangle int

	// LocalNormal is the face normal in the hit node's own frame. It is the
	// zero vector when the mesh carries no face normals.
	LocalNormal mgl64.Vec3
}

// Raycast intersects ray with the meshes of nodes and returns the nearest hit.
// Only the listed nodes are tested; their children are not.
func Raycast(ray Ray, nodes []*Node) (Hit, bool) {
	if !(ray.Dir.Len() >= 1e-12) {
		return Hit{}, false
	}
	dir := ray.Dir.Normalize()
	best := Hit{Distance: math.Inf(1)}
	found := false
	for _, n := range nodes {
		if n == nil || n.Mesh == nil {
			continue
		}
		world := n.WorldMatrix()
		if math.Abs(world.Det()) < 1e-18 {
			continue
		}
		inv := world.Inv()
		o := mathutil.TransformPoint(inv, ray.Origin)
		d := mathutil.TransformDir(inv, dir)
		// World and local rays share the parameter t because the map is affine.
		for i := 0; i < n.Mesh.Triangles(); i++ {
			a, b, c := n.Mesh.Triangle(i)
			t, ok := intersectTriangle(o, d, a, b, c)
			if !ok || t >= best.Distance {
				continue
			}
			best = Hit{
				Node:     n,
				Point:    ray.Origin.Add(dir.Mul(t)),
				Distance: t,
				Triangle: i,
			}
			if i < len(n.Mesh.FaceNormals) {
				best.LocalNormal = n.Mesh.FaceNormals[i]
			} else {
				best.LocalNormal = mgl64.Vec3{}
			}
			found = true
		}
	}
	return best, found
}

// intersectTriangle is Möller–Trumbore, double sided.
func intersectTriangle(o, d, a, b, c mgl64.Vec3) (float64, bool) {
	const eps = 1e-12
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := d.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, false
	}
	inv := 1 / det
	s := o.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := d.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	// Written negated so that NaN is rejected too.
	if !(t > 1e-9) {
		return 0, false
	}
	return t, true
}

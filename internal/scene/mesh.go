package scene

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle list in the node's local frame.
// FaceNormals holds one normal per triangle and may be empty when the
// source carried no face data.
type Mesh struct {
	Positions   []mgl64.Vec3
	UVs         [][2]float64
	Indices     []int
	FaceNormals []mgl64.Vec3
}

// Triangles returns the triangle count.
func (m *Mesh) Triangles() int { return len(m.Indices) / 3 }

// Triangle returns the three local-space corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c mgl64.Vec3) {
	return m.Positions[m.Indices[i*3]], m.Positions[m.Indices[i*3+1]], m.Positions[m.Indices[i*3+2]]
}

// Material describes how a mesh is shaded.
type Material struct {
	Color   color.NRGBA
	Texture *image.NRGBA

	// ScreenSpace samples Texture at the fragment's screen position instead of
	// its UV. Portal surfaces use it so the partner view lines up with the
	// viewer's own projection.
	ScreenSpace bool

	// Unlit skips lighting and tone mapping.
	Unlit bool
}

// computeFaceNormals fills FaceNormals from triangle winding (counter-clockwise
// is front facing).
func (m *Mesh) computeFaceNormals() {
	m.FaceNormals = make([]mgl64.Vec3, m.Triangles())
	for i := range m.FaceNormals {
		a, b, c := m.Triangle(i)
		m.FaceNormals[i] = b.Sub(a).Cross(c.Sub(a)).Normalize()
	}
}

// orientOutward flips triangles whose normal points toward the origin.
// Only valid for convex meshes centred on the origin.
func (m *Mesh) orientOutward() {
	for i := 0; i < m.Triangles(); i++ {
		a, b, c := m.Triangle(i)
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		if n.Dot(centroid) < 0 {
			m.Indices[i*3+1], m.Indices[i*3+2] = m.Indices[i*3+2], m.Indices[i*3+1]
		}
	}
}

// Plane builds a w×h quad in the XY plane facing +Z.
func Plane(w, h float64) *Mesh {
	hw, hh := w/2, h/2
	m := &Mesh{
		Positions: []mgl64.Vec3{{-hw, -hh, 0}, {hw, -hh, 0}, {hw, hh, 0}, {-hw, hh, 0}},
		UVs:       [][2]float64{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
		Indices:   []int{0, 1, 2, 0, 2, 3},
	}
	m.computeFaceNormals()
	return m
}

// Box builds an axis-aligned box centred on the origin.
func Box(w, h, d float64) *Mesh {
	faces := [6][3]mgl64.Vec3{
		// normal, u, v with u×v = normal
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	}
	size := mgl64.Vec3{w, h, d}
	m := &Mesh{}
	for _, f := range faces {
		n, u, v := f[0].Mul(0.5), f[1].Mul(0.5), f[2].Mul(0.5)
		base := len(m.Positions)
		corners := [4]mgl64.Vec3{
			n.Sub(u).Sub(v),
			n.Add(u).Sub(v),
			n.Add(u).Add(v),
			n.Sub(u).Add(v),
		}
		for _, c := range corners {
			m.Positions = append(m.Positions, mgl64.Vec3{c[0] * size[0], c[1] * size[1], c[2] * size[2]})
		}
		m.UVs = append(m.UVs, [2]float64{0, 1}, [2]float64{1, 1}, [2]float64{1, 0}, [2]float64{0, 0})
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	m.computeFaceNormals()
	return m
}

// Cylinder builds a capped cylinder along Y.
func Cylinder(radius, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	hh := height / 2
	m := &Mesh{}
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		x, z := radius*math.Sin(a), radius*math.Cos(a)
		u := float64(i) / float64(segments)
		m.Positions = append(m.Positions, mgl64.Vec3{x, -hh, z}, mgl64.Vec3{x, hh, z})
		m.UVs = append(m.UVs, [2]float64{u, 1}, [2]float64{u, 0})
	}
	top := len(m.Positions)
	m.Positions = append(m.Positions, mgl64.Vec3{0, hh, 0}, mgl64.Vec3{0, -hh, 0})
	m.UVs = append(m.UVs, [2]float64{0.5, 0.5}, [2]float64{0.5, 0.5})
	bottom := top + 1
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		b0, t0 := i*2, i*2+1
		b1, t1 := j*2, j*2+1
		m.Indices = append(m.Indices, b0, b1, t1, b0, t1, t0)
		m.Indices = append(m.Indices, top, t0, t1)
		m.Indices = append(m.Indices, bottom, b1, b0)
	}
	m.computeFaceNormals()
	return m
}

// Icosahedron builds a regular icosahedron of circumradius r.
func Icosahedron(r float64) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	raw := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	m := &Mesh{}
	for _, p := range raw {
		m.Positions = append(m.Positions, p.Normalize().Mul(r))
		m.UVs = append(m.UVs, [2]float64{0.5, 0.5})
	}
	m.Indices = []int{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}
	m.orientOutward()
	m.computeFaceNormals()
	return m
}

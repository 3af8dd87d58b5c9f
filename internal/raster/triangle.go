package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
	"portal-sandbox/internal/scene"
)

// clipVert is a vertex in homogeneous clip space.
type clipVert struct {
	pos  mgl64.Vec4
	u, v float64
	dist float64 // signed distance to the user clip plane
}

// screenVert is a projected vertex. Attributes are premultiplied by 1/w so
// they interpolate linearly in screen space.
type screenVert struct {
	x, y   float64
	invW   float64
	uw, vw float64
}

// fragShader carries the per-triangle state the pixel loop needs.
type fragShader struct {
	mat   *scene.Material
	lc    *LightConfig
	shade float64
	hasUV bool
}

// drawMesh transforms, clips and rasterizes every triangle of mesh.
func drawMesh(fb *FrameBuffer, mesh *scene.Mesh, mat *scene.Material, world mgl64.Mat4, cam *frameCamera, lc *LightConfig) {
	mvp := cam.viewProj.Mul4(world)
	nm := mathutil.NormalMatrix(world)
	hasUV := len(mesh.UVs) == len(mesh.Positions)

	var poly, nearClipped, planeClipped [6]clipVert
	for t := 0; t < mesh.Triangles(); t++ {
		ia, ib, ic := mesh.Indices[t*3], mesh.Indices[t*3+1], mesh.Indices[t*3+2]
		if ia < 0 || ib < 0 || ic < 0 || ia >= len(mesh.Positions) || ib >= len(mesh.Positions) || ic >= len(mesh.Positions) {
			continue
		}

		sh := fragShader{mat: mat, lc: lc, hasUV: hasUV && mat.Texture != nil}
		if !mat.Unlit && !mat.ScreenSpace {
			sh.shade = faceShade(mesh, t, world, nm, cam.eye, lc)
		}

		for k, idx := range [3]int{ia, ib, ic} {
			p := mesh.Positions[idx]
			poly[k] = clipVert{pos: mvp.Mul4x1(p.Vec4(1))}
			if hasUV {
				poly[k].u, poly[k].v = mesh.UVs[idx][0], mesh.UVs[idx][1]
			}
			if cam.hasClip {
				poly[k].dist = cam.clip.Dot(world.Mul4x1(p.Vec4(1)))
			}
		}

		n := clipPolygon(poly[:3], nearClipped[:0], nearDistance)
		if cam.hasClip {
			n = clipPolygon(n, planeClipped[:0], planeDistance)
		}
		if len(n) < 3 {
			continue
		}
		var sv [6]screenVert
		for k := range n {
			sv[k] = project(n[k], fb.Width, fb.Height)
		}
		for k := 1; k+1 < len(n); k++ {
			rasterizeTriangle(fb, sv[0], sv[k], sv[k+1], &sh)
		}
	}
}

// faceShade computes the flat lighting scalar for triangle t.
func faceShade(mesh *scene.Mesh, t int, world mgl64.Mat4, nm mgl64.Mat3, eye mgl64.Vec3, lc *LightConfig) float64 {
	a, b, c := mesh.Triangle(t)
	wa := mathutil.TransformPoint(world, a)
	wb := mathutil.TransformPoint(world, b)
	wc := mathutil.TransformPoint(world, c)

	var n mgl64.Vec3
	if t < len(mesh.FaceNormals) {
		n = nm.Mul3x1(mesh.FaceNormals[t])
	} else {
		n = wb.Sub(wa).Cross(wc.Sub(wa))
	}
	if n.Len() < 1e-12 {
		return lc.Ambient
	}
	n = n.Normalize()

	view := eye.Sub(wa.Add(wb).Add(wc).Mul(1.0 / 3))
	if view.Len() > 1e-12 {
		view = view.Normalize()
	}
	return lc.ComputeShade(n, view)
}

// frameCamera is the per-render camera state shared by every mesh.
type frameCamera struct {
	viewProj mgl64.Mat4
	eye      mgl64.Vec3
	clip     mgl64.Vec4
	hasClip  bool
}

func nearDistance(c clipVert) float64  { return c.pos[2] + c.pos[3] }
func planeDistance(c clipVert) float64 { return c.dist }

// clipPolygon clips a convex polygon to the side where dist >= 0 using
// Sutherland-Hodgman and appends the result to out.
func clipPolygon(in []clipVert, out []clipVert, dist func(clipVert) float64) []clipVert {
	for i := range in {
		a := in[i]
		b := in[(i+1)%len(in)]
		da := dist(a)
		db := dist(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, clipVert{
				pos:  a.pos.Add(b.pos.Sub(a.pos).Mul(t)),
				u:    a.u + (b.u-a.u)*t,
				v:    a.v + (b.v-a.v)*t,
				dist: a.dist + (b.dist-a.dist)*t,
			})
		}
	}
	return out
}

// project performs the perspective divide and viewport mapping. Screen y
// grows downward.
func project(c clipVert, w, h int) screenVert {
	invW := 1 / c.pos[3]
	nx := c.pos[0] * invW
	ny := c.pos[1] * invW
	return screenVert{
		x:    (nx + 1) * 0.5 * float64(w),
		y:    (1 - ny) * 0.5 * float64(h),
		invW: invW,
		uw:   c.u * invW,
		vw:   c.v * invW,
	}
}

// rasterizeTriangle fills one projected triangle with perspective-correct
// texturing, z-buffer, sRGB color space, lighting and ACES tone mapping.
//
// This is the hot path; nothing in the pixel loop allocates.
func rasterizeTriangle(fb *FrameBuffer, a, b, c screenVert, sh *fragShader) {
	x0, y0 := a.x, a.y
	x1, y1 := b.x, b.y
	x2, y2 := c.x, c.y

	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	mat := sh.mat
	tex := mat.Texture
	invFW := 1.0 / float64(fb.Width)
	invFH := 1.0 / float64(fb.Height)

	for sy := minY; sy <= maxY; sy++ {
		pyc := float64(sy) + 0.5
		dsy := pyc - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			pxc := float64(sx) + 0.5
			dsx := pxc - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -1e-9 || w1 < -1e-9 || w2 < -1e-9 {
				continue
			}

			invW := w0*a.invW + w1*b.invW + w2*c.invW
			zIdx := rowOff + sx
			if invW <= fb.ZBuf[zIdx] {
				continue
			}

			var cr, cg, cb, ca uint8
			switch {
			case mat.ScreenSpace && tex != nil:
				cr, cg, cb, ca = SampleScreen(tex, pxc*invFW, pyc*invFH)
			case sh.hasUV:
				u := (w0*a.uw + w1*b.uw + w2*c.uw) / invW
				v := (w0*a.vw + w1*b.vw + w2*c.vw) / invW
				cr, cg, cb, ca = SampleTexture(tex, u, v)
			default:
				cr, cg, cb, ca = mat.Color.R, mat.Color.G, mat.Color.B, mat.Color.A
			}

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = invW

			if !mat.Unlit && !mat.ScreenSpace {
				cr, cg, cb = sh.lc.shadeColor(cr, cg, cb, sh.shade)
			}

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = cr
			fb.Color[pxIdx+1] = cg
			fb.Color[pxIdx+2] = cb
			fb.Color[pxIdx+3] = 255
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

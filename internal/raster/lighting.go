package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LightConfig holds precomputed lighting parameters. Directions point from
// the surface toward the light in world space.
type LightConfig struct {
	LightDir  mgl64.Vec3
	RimDir    mgl64.Vec3
	Ambient   float64
	Hemi      float64
	Direct    float64
	Rim       float64
	SpecInt   float64
	SpecPow   float64
	Exposure  float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig returns the sandbox lighting: an ambient term plus a
// warm key light from above.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir:  mgl64.Vec3{5, 10, 7}.Normalize(),
		RimDir:    mgl64.Vec3{-6, 4, -8}.Normalize(),
		Ambient:   0.35,
		Hemi:      0.40,
		Direct:    1.10,
		Rim:       0.30,
		SpecInt:   0.25,
		SpecPow:   16.0,
		Exposure:  0.95,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a world-space face
// normal seen along viewDir (surface to eye). Faces are double sided: a
// normal pointing away from the eye is flipped first.
func (lc *LightConfig) ComputeShade(normal, viewDir mgl64.Vec3) float64 {
	if normal.Dot(viewDir) < 0 {
		normal = normal.Mul(-1)
	}

	ndlMain := math.Max(0, normal.Dot(lc.LightDir))
	ndlRim := math.Abs(normal.Dot(lc.RimDir))

	// Sky/ground hemisphere
	hemiLight := (0.5 + 0.5*normal[1]) * lc.Hemi

	// Blinn-Phong specular
	spec := 0.0
	if half := lc.LightDir.Add(viewDir); half.Len() > 1e-9 {
		ndh := math.Max(0, normal.Dot(half.Normalize()))
		spec = math.Pow(ndh, lc.SpecPow) * lc.SpecInt
	}

	return lc.Ambient + hemiLight + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// shadeColor runs one texel through sRGB decode, lighting, tone mapping and
// encode.
func (lc *LightConfig) shadeColor(cr, cg, cb uint8, shade float64) (uint8, uint8, uint8) {
	k := shade * lc.Exposure
	tr := ACESTonemap(srgbToLinear[cr] * k)
	tg := ACESTonemap(srgbToLinear[cg] * k)
	tb := ACESTonemap(srgbToLinear[cb] * k)
	return clamp255(math.Pow(tr, lc.InvGamma) * 255),
		clamp255(math.Pow(tg, lc.InvGamma) * 255),
		clamp255(math.Pow(tb, lc.InvGamma) * 255)
}

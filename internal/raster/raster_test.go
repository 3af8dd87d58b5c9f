package raster

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/scene"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func testCamera() scene.Camera {
	return scene.Camera{
		World:      mgl64.Ident4(),
		Projection: scene.Projection{FOV: 70, Near: 0.1, Far: 100, Aspect: 1},
	}
}

func wall(name string, c color.NRGBA, z float64) *scene.Node {
	n := scene.NewMeshNode(name, scene.Plane(10, 10), scene.Material{Color: c, Unlit: true})
	n.Position = mgl64.Vec3{0, 0, z}
	return n
}

func TestFrameBufferResizeAndClear(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	if len(fb.Color) != 4*3*4 || len(fb.ZBuf) != 12 {
		t.Fatalf("buffer sizes = (%d, %d), want (48, 12)", len(fb.Color), len(fb.ZBuf))
	}
	fb.Clear(blue)
	if got := fb.At(3, 2); got != blue {
		t.Errorf("At(3,2) = %v, want %v", got, blue)
	}
	old := fb.Image()
	fb.Resize(8, 8)
	if fb.Image() == old {
		t.Error("Image() not replaced after Resize")
	}
	if fb.Image().Bounds() != image.Rect(0, 0, 8, 8) {
		t.Errorf("Image().Bounds() = %v, want 8x8", fb.Image().Bounds())
	}
	if !math.IsInf(fb.ZBuf[0], -1) {
		t.Errorf("ZBuf[0] = %v, want -inf", fb.ZBuf[0])
	}
}

func TestRenderUnlitBox(t *testing.T) {
	g := scene.NewGraph()
	box := scene.NewMeshNode("box", scene.Box(1, 1, 1), scene.Material{Color: red, Unlit: true})
	box.Position = mgl64.Vec3{0, 0, -5}
	g.Add(box)

	d := NewDevice(g, 64, 64)
	if err := d.Render(testCamera()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := d.Screen().At(32, 32); got != red {
		t.Errorf("center = %v, want %v", got, red)
	}
	if got := d.Screen().At(0, 0); got != d.Background {
		t.Errorf("corner = %v, want background %v", got, d.Background)
	}
}

func TestRenderDepthOrderIndependent(t *testing.T) {
	tests := []struct {
		name  string
		first bool
	}{
		{"near added first", true},
		{"far added first", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := scene.NewGraph()
			nearWall := wall("near", red, -3)
			farWall := wall("far", blue, -6)
			if tt.first {
				g.Add(nearWall)
				g.Add(farWall)
			} else {
				g.Add(farWall)
				g.Add(nearWall)
			}
			d := NewDevice(g, 32, 32)
			if err := d.Render(testCamera()); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got := d.Screen().At(16, 16); got != red {
				t.Errorf("center = %v, want near wall %v", got, red)
			}
		})
	}
}

func TestRenderClipsGeometryBehindCamera(t *testing.T) {
	g := scene.NewGraph()
	floor := scene.NewMeshNode("floor", scene.Plane(100, 100), scene.Material{Color: green, Unlit: true})
	floor.Rotation = mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})
	g.Add(floor)

	cam := testCamera()
	cam.World = mgl64.Translate3D(0, 1, 0)
	d := NewDevice(g, 32, 32)
	if err := d.Render(cam); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := d.Screen().At(16, 31); got != green {
		t.Errorf("bottom = %v, want floor %v", got, green)
	}
	if got := d.Screen().At(16, 0); got != d.Background {
		t.Errorf("top = %v, want background", got)
	}
}

func TestRenderScreenSpaceMaterial(t *testing.T) {
	src := NewFrameBuffer(32, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			c := red
			if x >= 16 {
				c = blue
			}
			i := (y*32 + x) * 4
			src.Color[i], src.Color[i+1], src.Color[i+2], src.Color[i+3] = c.R, c.G, c.B, c.A
		}
	}

	g := scene.NewGraph()
	surface := scene.NewMeshNode("surface", scene.Plane(10, 10), scene.Material{Texture: src.Image(), ScreenSpace: true})
	surface.Position = mgl64.Vec3{0, 0, -1}
	g.Add(surface)

	d := NewDevice(g, 32, 32)
	if err := d.Render(testCamera()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := d.Screen().At(4, 10); got != red {
		t.Errorf("left = %v, want %v", got, red)
	}
	if got := d.Screen().At(28, 10); got != blue {
		t.Errorf("right = %v, want %v", got, blue)
	}
}

func TestRenderTargetBinding(t *testing.T) {
	g := scene.NewGraph()
	g.Add(wall("w", red, -2))
	d := NewDevice(g, 16, 16)

	target := NewFrameBuffer(16, 16)
	d.SetRenderTarget(target)
	if d.Bound() != target {
		t.Fatal("Bound() is not the offscreen target")
	}
	if err := d.Render(testCamera()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := target.At(8, 8); got != red {
		t.Errorf("target center = %v, want %v", got, red)
	}
	if got := d.Screen().At(8, 8); got == red {
		t.Error("screen was drawn while an offscreen target was bound")
	}

	d.SetRenderTarget(nil)
	if d.Bound() != d.Screen() {
		t.Error("SetRenderTarget(nil) did not rebind the screen")
	}
}

func TestRenderNoTarget(t *testing.T) {
	d := NewDevice(scene.NewGraph(), 16, 16)
	d.SetRenderTarget(NewFrameBuffer(0, 0))
	if err := d.Render(testCamera()); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("Render() error = %v, want ErrNoTarget", err)
	}
}

func TestLitShadingStaysInRange(t *testing.T) {
	lc := DefaultLightConfig()
	for _, n := range []mgl64.Vec3{{0, 1, 0}, {0, -1, 0}, {1, 0, 0}, {0, 0, 1}} {
		shade := lc.ComputeShade(n, mgl64.Vec3{0, 0, 1})
		if shade <= 0 || math.IsNaN(shade) {
			t.Errorf("ComputeShade(%v) = %v, want > 0", n, shade)
		}
	}
}

func TestRenderUserClipPlane(t *testing.T) {
	g := scene.NewGraph()
	g.Add(wall("near", red, -3))
	g.Add(wall("far", blue, -6))

	cam := testCamera()
	cam.Clip = scene.ClipPlaneAt(mgl64.Vec3{0, 0, -4}, mgl64.Vec3{0, 0, -1})
	cam.HasClip = true

	d := NewDevice(g, 32, 32)
	if err := d.Render(cam); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := d.Screen().At(16, 16); got != blue {
		t.Errorf("center = %v, want far wall %v behind the clip plane", got, blue)
	}
}

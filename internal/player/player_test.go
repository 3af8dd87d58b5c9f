package player

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/scene"
)

// vecNear compares by distance. mgl64's ApproxEqualThreshold squares the
// threshold when either side is zero, which is far stricter than tol.
func vecNear(a, b mgl64.Vec3, tol float64) bool { return a.Sub(b).Len() < tol }

func newTestViewer() *Viewer {
	return NewViewer(mgl64.Vec3{0, EyeHeight, 0}, scene.Projection{FOV: 70, Near: 0.1, Far: 200, Aspect: 16.0 / 9})
}

func TestStepWalkApproachesTargetSpeed(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		speed float64
		dir   mgl64.Vec3
	}{
		{"forward", Input{Forward: true}, WalkSpeed, mgl64.Vec3{0, 0, -1}},
		{"sprint", Input{Forward: true, Sprint: true}, SprintSpeed, mgl64.Vec3{0, 0, -1}},
		{"strafe right", Input{Right: true}, WalkSpeed, mgl64.Vec3{1, 0, 0}},
		{"back left", Input{Back: true, Left: true}, WalkSpeed, mgl64.Vec3{-1, 0, 1}.Normalize()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViewer()
			for i := 0; i < 240; i++ {
				v.Step(1.0/60, tt.in)
			}
			want := tt.dir.Mul(tt.speed)
			got := mgl64.Vec3{v.Velocity()[0], 0, v.Velocity()[2]}
			if !vecNear(got, want, 1e-3) {
				t.Errorf("velocity = %v, want %v", got, want)
			}
		})
	}
}

func TestStepDampsToRest(t *testing.T) {
	v := newTestViewer()
	v.SetVelocity(mgl64.Vec3{5, 0, 5})
	v.Step(0.1, Input{})
	want := 5 * math.Exp(-Damping*0.1)
	if got := v.Velocity()[0]; math.Abs(got-want) > 1e-9 {
		t.Errorf("vx = %v, want %v", got, want)
	}
}

func TestStepJumpAndLand(t *testing.T) {
	v := newTestViewer()
	v.Step(1.0/60, Input{Jump: true})
	if v.Position()[1] <= EyeHeight {
		t.Fatalf("y = %v after jump, want above eye height", v.Position()[1])
	}
	// Holding jump mid-air does nothing.
	v.Step(1.0/60, Input{Jump: true})
	peakVel := v.Velocity()[1]
	if peakVel >= JumpSpeed {
		t.Errorf("vy = %v, want decaying below %v", peakVel, JumpSpeed)
	}
	for i := 0; i < 120; i++ {
		v.Step(1.0/60, Input{})
	}
	if got := v.Position()[1]; got != EyeHeight {
		t.Errorf("landed y = %v, want %v", got, EyeHeight)
	}
	if got := v.Velocity()[1]; got != 0 {
		t.Errorf("landed vy = %v, want 0", got)
	}
}

func TestStepClampsPlayArea(t *testing.T) {
	v := newTestViewer()
	v.Node.Position = mgl64.Vec3{11.9, EyeHeight, -11.9}
	v.SetVelocity(mgl64.Vec3{50, 0, -50})
	v.Step(0.1, Input{})
	p := v.Position()
	if p[0] != PlayBounds || p[2] != -PlayBounds {
		t.Errorf("position = %v, want clamped to ±%v", p, PlayBounds)
	}
}

func TestSetWorldMatrixRederivesLook(t *testing.T) {
	v := newTestViewer()
	// Facing -X: a quarter turn left from the default -Z.
	m := mgl64.Translate3D(9.99, 1.2, 0).Mul4(mgl64.HomogRotate3DY(math.Pi / 2))
	v.SetWorldMatrix(m)

	if got := v.Position(); !vecNear(got, mgl64.Vec3{9.99, 1.2, 0}, 1e-9) {
		t.Errorf("Position() = %v", got)
	}
	if math.Abs(v.Yaw()-math.Pi/2) > 1e-9 {
		t.Errorf("Yaw() = %v, want π/2", v.Yaw())
	}
	if got := v.Forward(); !vecNear(got, mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("Forward() = %v, want -X", got)
	}

	// Walking forward now moves along -X.
	for i := 0; i < 240; i++ {
		v.Step(1.0/60, Input{Forward: true})
	}
	if v.Velocity()[0] >= -WalkSpeed*0.99 {
		t.Errorf("vx = %v, want ≈ -%v", v.Velocity()[0], WalkSpeed)
	}
}

func TestLookClampsPitch(t *testing.T) {
	v := newTestViewer()
	v.Step(1.0/60, Input{LookPitch: 10})
	if v.Pitch() >= math.Pi/2 {
		t.Errorf("Pitch() = %v, want < π/2", v.Pitch())
	}
}

func TestHoldAndRelease(t *testing.T) {
	g := scene.NewGraph()
	shelf := scene.NewNode("shelf")
	g.Add(shelf)
	item := scene.NewMeshNode("emitter", scene.Box(1, 0.4, 2), scene.Material{})
	shelf.Add(item)
	v := newTestViewer()
	g.Add(v.Node)

	h := Hold(g, item, v)
	if item.Parent() != v.Node {
		t.Fatal("item not attached to the viewer")
	}
	h.Update(1.3)
	want := v.Position().Add(mgl64.Vec3{0.55, -0.6, HeldOffset[2] - math.Sin(2.6)*0.04})
	if got := item.WorldPosition(); !vecNear(got, want, 1e-9) {
		t.Errorf("item world = %v, want %v", got, want)
	}

	h.Release()
	h.Release()
	if item.Parent() != shelf {
		t.Error("item not restored to its original parent")
	}
}

package portal

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
)

// vecNear compares by distance. mgl64's ApproxEqualThreshold squares the
// threshold when either side is zero, which is far stricter than tol.
func vecNear(a, b mgl64.Vec3, tol float64) bool { return a.Sub(b).Len() < tol }

func matNear(a, b mgl64.Mat4, tol float64) bool {
	for i := range a {
		if !(math.Abs(a[i]-b[i]) <= tol) {
			return false
		}
	}
	return true
}

const tol = 1e-9

func pose(id, slot int, pos, normal mgl64.Vec3) Pose {
	pl := NewPlacement(pos, normal)
	return Pose{ID: id, Slot: slot, Position: pl.Position, Normal: pl.Normal, Orientation: pl.Orientation, Active: true}
}

// scenarioPair is portal A at the origin facing +Z and portal B at (10,0,0)
// facing -X.
func scenarioPair() (a, b Pose) {
	return pose(0, 0, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}),
		pose(1, 1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{-1, 0, 0})
}

func TestWorldNormalUsesInverseTranspose(t *testing.T) {
	tests := []struct {
		name  string
		world mgl64.Mat4
		local mgl64.Vec3
	}{
		{"identity", mgl64.Ident4(), mgl64.Vec3{0, 0, 1}},
		{"non-uniform scale", mgl64.Scale3D(1, 4, 0.5), mgl64.Vec3{0.6, 0.8, 0}.Normalize()},
		{"rotated and scaled", mgl64.Translate3D(3, 1, -2).Mul4(mgl64.HomogRotate3DY(0.7)).Mul4(mgl64.Scale3D(3, 3, 0.6)), mgl64.Vec3{1, 1, 1}.Normalize()},
		{"mirrored", mgl64.Scale3D(-2, 1, 1), mgl64.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.world.Mat3().Inv().Transpose().Mul3x1(tt.local).Normalize()
			got := WorldNormal(tt.world, tt.local)
			if !vecNear(got, want, tol) {
				t.Errorf("WorldNormal() = %v, want %v", got, want)
			}
		})
	}
}

func TestWorldNormalDiffersFromNaiveUnderShear(t *testing.T) {
	world := mgl64.Scale3D(1, 4, 1)
	local := mgl64.Vec3{1, 1, 0}.Normalize()
	naive := mathutil.TransformDir(world, local).Normalize()
	got := WorldNormal(world, local)
	if vecNear(got, naive, 1e-3) {
		t.Fatalf("WorldNormal() = naive transform %v", naive)
	}
	// The transformed normal stays perpendicular to a transformed tangent.
	tangent := mathutil.TransformDir(world, mgl64.Vec3{1, -1, 0})
	if d := got.Dot(tangent); math.Abs(d) > tol {
		t.Errorf("normal·tangent = %v, want 0", d)
	}
}

func TestWorldNormalDegenerateFallsBack(t *testing.T) {
	if got := WorldNormal(mgl64.Ident4(), mgl64.Vec3{}); got != DefaultNormal {
		t.Errorf("WorldNormal(zero) = %v, want %v", got, DefaultNormal)
	}
	if got := WorldNormal(mgl64.Scale3D(0, 0, 0), mgl64.Vec3{0, 1, 0}); got != DefaultNormal {
		t.Errorf("WorldNormal(singular) = %v, want %v", got, DefaultNormal)
	}
}

func TestNewPlacementOrientsForwardToNormal(t *testing.T) {
	for _, n := range []mgl64.Vec3{{0, 0, 1}, {0, 0, -1}, {1, 0, 0}, {0, 1, 0}, {1, 2, -3}} {
		pl := NewPlacement(mgl64.Vec3{}, n)
		got := pl.Orientation.Rotate(mathutil.CanonicalForward)
		if !vecNear(got, n.Normalize(), 1e-9) {
			t.Errorf("forward for %v = %v", n, got)
		}
	}
}

func TestRegistryCapacityInvariant(t *testing.T) {
	for capacity := 1; capacity <= 4; capacity++ {
		r := NewRegistry(capacity)
		for i := 0; i < 12; i++ {
			switch i % 4 {
			case 0, 1:
				r.Insert(NewPlacement(mgl64.Vec3{float64(i), 0, 0}, DefaultNormal))
			case 2:
				r.Replace(i%capacity, NewPlacement(mgl64.Vec3{}, DefaultNormal))
			case 3:
				r.Evict(i)
			}
			if r.Len() > r.Cap() {
				t.Fatalf("cap %d step %d: Len() = %d > Cap()", capacity, i, r.Len())
			}
			slots := map[int]bool{}
			for _, p := range r.Poses() {
				if p.Slot < 0 || p.Slot >= capacity || slots[p.Slot] {
					t.Fatalf("cap %d step %d: bad slot %d", capacity, i, p.Slot)
				}
				slots[p.Slot] = true
			}
		}
	}
}

func TestRegistryFIFOEviction(t *testing.T) {
	r := NewRegistry(2)
	p0, _ := r.Insert(NewPlacement(mgl64.Vec3{0, 0, 0}, DefaultNormal))
	p1, _ := r.Insert(NewPlacement(mgl64.Vec3{1, 0, 0}, DefaultNormal))
	p2, evicted := r.Insert(NewPlacement(mgl64.Vec3{2, 0, 0}, DefaultNormal))

	if len(evicted) != 1 || evicted[0].ID != p0.ID {
		t.Fatalf("evicted = %v, want [P0]", evicted)
	}
	got := r.Poses()
	if len(got) != 2 || got[0].ID != p1.ID || got[1].ID != p2.ID {
		t.Fatalf("Poses() ids = %v, want [%d %d]", ids(got), p1.ID, p2.ID)
	}
	if p2.Slot != p0.Slot {
		t.Errorf("P2 slot = %d, want reused slot %d", p2.Slot, p0.Slot)
	}
	if p2.ColorTag != "orange" || got[0].ColorTag != "cyan" {
		t.Errorf("tags = (%s, %s), want (cyan, orange)", got[0].ColorTag, p2.ColorTag)
	}
}

func TestRegistryReplaceKeepsIdentity(t *testing.T) {
	r := NewRegistry(2)
	a, _ := r.Insert(NewPlacement(mgl64.Vec3{0, 0, 0}, DefaultNormal))
	b, _ := r.Insert(NewPlacement(mgl64.Vec3{1, 0, 0}, DefaultNormal))

	moved, replaced, ok := r.Replace(a.Slot, NewPlacement(mgl64.Vec3{5, 5, 5}, mgl64.Vec3{1, 0, 0}))
	if !ok || !replaced {
		t.Fatalf("Replace() = (_, %v, %v), want replaced", replaced, ok)
	}
	if moved.ID != a.ID || moved.Position != (mgl64.Vec3{5, 5, 5}) {
		t.Errorf("moved = %+v, want id %d at (5,5,5)", moved, a.ID)
	}
	if got := ids(r.Poses()); got[0] != b.ID || got[1] != a.ID {
		t.Errorf("order = %v, want [%d %d]", got, b.ID, a.ID)
	}
	if _, _, ok := r.Replace(2, NewPlacement(mgl64.Vec3{}, DefaultNormal)); ok {
		t.Error("Replace(slot 2) on cap 2 succeeded")
	}
}

func TestRegistryReplaceActivatesDormantSlot(t *testing.T) {
	tests := []struct {
		name       string
		slot       int
		wantActive []int
	}{
		{"oldest", 0, []int{2, 0}},
		{"middle", 1, []int{2, 1}},
		{"newest", 2, []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(3)
			for i := 0; i < 3; i++ {
				r.Insert(NewPlacement(mgl64.Vec3{float64(i), 0, 0}, DefaultNormal))
			}
			placed, _, _ := r.Replace(tt.slot, NewPlacement(mgl64.Vec3{9, 0, 0}, DefaultNormal))
			if !placed.Active {
				t.Errorf("Replace(%d).Active = false, want true", tt.slot)
			}
			var active []int
			for _, p := range r.Poses() {
				if p.Active {
					active = append(active, p.Slot)
				}
			}
			if len(active) != 2 || active[0] != tt.wantActive[0] || active[1] != tt.wantActive[1] {
				t.Errorf("active slots = %v, want %v", active, tt.wantActive)
			}
			links := r.Links()
			if len(links) != 2 || links[0].Source.Slot != tt.slot {
				t.Errorf("Links()[0].Source.Slot = %v, want %d", links, tt.slot)
			}
		})
	}
}

func TestRegistryReplaceClaimsEmptySlot(t *testing.T) {
	r := NewRegistry(2)
	p, replaced, ok := r.Replace(1, NewPlacement(mgl64.Vec3{}, DefaultNormal))
	if !ok || replaced || p.Slot != 1 || p.ColorTag != "cyan" {
		t.Fatalf("Replace(1) = (%+v, %v, %v)", p, replaced, ok)
	}
	q, _ := r.Insert(NewPlacement(mgl64.Vec3{}, DefaultNormal))
	if q.Slot != 0 {
		t.Errorf("Insert slot = %d, want 0", q.Slot)
	}
}

func TestRegistryLinksMostRecentTwo(t *testing.T) {
	r := NewRegistry(3)
	if len(r.Links()) != 0 {
		t.Fatal("empty registry has links")
	}
	r.Insert(NewPlacement(mgl64.Vec3{}, DefaultNormal))
	if len(r.Links()) != 0 {
		t.Fatal("single pose has links")
	}
	r.Insert(NewPlacement(mgl64.Vec3{}, DefaultNormal))
	r.Insert(NewPlacement(mgl64.Vec3{}, DefaultNormal))

	poses := r.Poses()
	if poses[0].Active || !poses[1].Active || !poses[2].Active {
		t.Fatalf("Active = [%v %v %v], want [false true true]", poses[0].Active, poses[1].Active, poses[2].Active)
	}
	links := r.Links()
	if len(links) != 2 {
		t.Fatalf("Links() = %d, want 2", len(links))
	}
	if links[0].Source.ID != links[1].Dest.ID || links[0].Dest.ID != links[1].Source.ID {
		t.Error("links are not the two directions of one pair")
	}
	if _, ok := r.Partner(poses[0].ID); ok {
		t.Error("dormant pose has a partner")
	}
}

func TestRegistryEvictUnknownIsNoop(t *testing.T) {
	r := NewRegistry(2)
	r.Insert(NewPlacement(mgl64.Vec3{}, DefaultNormal))
	if _, ok := r.Evict(42); ok {
		t.Error("Evict(42) = true")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestLinkRoundTrip(t *testing.T) {
	a, b := scenarioPair()
	c := pose(2, 0, mgl64.Vec3{-3, 2, 7}, mgl64.Vec3{1, 0.2, -0.4})
	tests := []struct {
		name string
		link Link
	}{
		{"A to B", Link{Source: a, Dest: b}},
		{"B to C", Link{Source: b, Dest: c}},
		{"C to A", Link{Source: c, Dest: a}},
	}
	points := []mgl64.Vec3{{0, 0, 1}, {0.3, -0.5, 0.01}, {12, 4, -9}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			there := tt.link.Transform()
			back := tt.link.Reverse().Transform()
			for _, p := range points {
				got := mathutil.TransformPoint(back, mathutil.TransformPoint(there, p))
				if !vecNear(got, p, 1e-9) {
					t.Errorf("round trip of %v = %v", p, got)
				}
			}
		})
	}
}

func TestLinkSymmetry(t *testing.T) {
	a, b := scenarioPair()
	ab := Link{Source: a, Dest: b}
	ba := ab.Reverse()
	if ba.Source.ID != b.ID || ba.Dest.ID != a.ID {
		t.Fatal("Reverse() did not swap roles")
	}
	// The same depth sequence relative to each source fires exactly once,
	// whichever direction it is applied to.
	for _, l := range []Link{ab, ba} {
		d := NewCrossingDetector(ApertureWidth, ApertureHeight, CrossingSlack)
		front := mathutil.TransformPoint(l.Source.WorldMatrix(), mgl64.Vec3{0.1, 0.2, 0.5})
		behind := mathutil.TransformPoint(l.Source.WorldMatrix(), mgl64.Vec3{0.1, 0.2, -0.05})
		fired := 0
		for _, p := range []mgl64.Vec3{front, front, behind, behind} {
			if d.Check(l.Source, p, 0) {
				fired++
			}
		}
		if fired != 1 {
			t.Errorf("source %d fired %d times, want 1", l.Source.ID, fired)
		}
	}
}

func TestCrossingDetectorCrossBackUsesDestinationCooldown(t *testing.T) {
	a, b := scenarioPair()
	d := NewCrossingDetector(ApertureWidth, ApertureHeight, CrossingSlack)
	cd := NewCooldowns()
	cd.Set(a.ID, DefaultSuppression)

	front := mathutil.TransformPoint(b.WorldMatrix(), mgl64.Vec3{0, 0, 1})
	behind := mathutil.TransformPoint(b.WorldMatrix(), mgl64.Vec3{0, 0, -0.01})

	d.Check(b, front, cd.Get(b.ID))
	if !d.Check(b, behind, cd.Get(b.ID)) {
		t.Fatal("crossing B blocked by A's cooldown")
	}

	cd.Set(b.ID, DefaultSuppression)
	d.Check(b, front, cd.Get(b.ID))
	if d.Check(b, behind, cd.Get(b.ID)) {
		t.Fatal("crossing B fired while B is cooling down")
	}
}

func TestCrossingRequiresFootprint(t *testing.T) {
	a, _ := scenarioPair()
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 0, 0, true},
		{"edge", 0.8, 1.3, true},
		{"wide", 0.81, 0, false},
		{"high", 0, 1.31, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewCrossingDetector(ApertureWidth, ApertureHeight, CrossingSlack)
			d.Check(a, mgl64.Vec3{tt.x, tt.y, 0.5}, 0)
			if got := d.Check(a, mgl64.Vec3{tt.x, tt.y, 0.01}, 0); got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
			if z, _ := d.Depth(a.ID); math.Abs(z-0.01) > tol {
				t.Errorf("Depth() = %v, want 0.01 recorded unconditionally", z)
			}
		})
	}
}

func TestCrossingFirstObservationSeeds(t *testing.T) {
	a, _ := scenarioPair()
	d := NewCrossingDetector(ApertureWidth, ApertureHeight, CrossingSlack)
	if d.Check(a, mgl64.Vec3{0, 0, -0.01}, 0) {
		t.Fatal("first observation fired")
	}
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", d.Len())
	}
}

func TestCrossingSeededInsideSlackNeedsRearm(t *testing.T) {
	a, _ := scenarioPair()
	d := NewCrossingDetector(ApertureWidth, ApertureHeight, CrossingSlack)
	d.Seed(a.ID, 0.01)
	for i, z := range []float64{0.01, -0.001, 0.015} {
		if d.Check(a, mgl64.Vec3{0, 0, z}, 0) {
			t.Fatalf("jitter sample %d fired", i)
		}
	}
	d.Check(a, mgl64.Vec3{0, 0, 0.5}, 0)
	if !d.Check(a, mgl64.Vec3{0, 0, 0}, 0) {
		t.Fatal("re-armed portal did not fire")
	}
}

func TestVelocityMagnitudePreserved(t *testing.T) {
	a, b := scenarioPair()
	c := pose(2, 0, mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0.3, -0.9, 0.1})
	transforms := []mgl64.Mat4{
		Link{Source: a, Dest: b}.Transform(),
		Link{Source: c, Dest: a}.Transform(),
		mgl64.Translate3D(4, 5, 6).Mul4(mgl64.HomogRotate3DX(1.1)).Mul4(mgl64.Scale3D(2, 0.5, 3)),
	}
	velocities := []mgl64.Vec3{{0, 0, -5}, {1, 2, 3}, {-7, 0.1, 0}, {}}
	for i, tr := range transforms {
		for _, v := range velocities {
			got := RotateVelocity(tr, v)
			if math.Abs(got.Len()-v.Len()) > 1e-9 {
				t.Errorf("transform %d: |R·%v| = %v, want %v", i, v, got.Len(), v.Len())
			}
		}
	}
}

func TestCooldownsClampAtZero(t *testing.T) {
	c := NewCooldowns()
	c.Set(1, 0.3)
	c.Set(2, 0.05)
	c.Tick(0.1)
	if got := c.Get(1); math.Abs(got-0.2) > tol {
		t.Errorf("Get(1) = %v, want 0.2", got)
	}
	if got := c.Get(2); got != 0 {
		t.Errorf("Get(2) = %v, want 0", got)
	}
	c.Tick(-1)
	if got := c.Get(1); math.Abs(got-0.2) > tol {
		t.Errorf("negative dt changed Get(1) to %v", got)
	}
	c.Forget(1)
	if c.Len() != 1 || c.Get(1) != 0 {
		t.Errorf("Forget(1) left Len() = %d, Get(1) = %v", c.Len(), c.Get(1))
	}
}

func ids(poses []Pose) []int {
	out := make([]int, len(poses))
	for i, p := range poses {
		out[i] = p.ID
	}
	return out
}

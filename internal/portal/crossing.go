package portal

import "github.com/go-gl/mathgl/mgl64"

type crossingState struct {
	prevZ float64
	armed bool
}

// CrossingDetector tracks the viewer's signed depth in each source portal's
// frame and reports front-to-back transitions inside the aperture.
//
// A portal's state is armed once the viewer has been seen beyond the slack
// band in front of it. Freshly seeded states that start inside the band are
// disarmed, so a viewer emerging from a portal cannot re-trigger it by
// jitter alone. Crossings faster than one aperture depth per tick can be
// missed.
type CrossingDetector struct {
	states map[int]*crossingState
	halfW  float64
	halfH  float64
	slack  float64
}

func NewCrossingDetector(width, height, slack float64) *CrossingDetector {
	return &CrossingDetector{
		states: make(map[int]*crossingState),
		halfW:  width / 2,
		halfH:  height / 2,
		slack:  slack,
	}
}

// Check runs one crossing test of viewerPos against src and records the new
// depth. The first observation of a portal only seeds its state.
func (d *CrossingDetector) Check(src Pose, viewerPos mgl64.Vec3, cooldown float64) bool {
	local := src.Local(viewerPos)
	z := local[2]
	st, ok := d.states[src.ID]
	if !ok {
		d.Seed(src.ID, z)
		return false
	}
	inside := abs(local[0]) <= d.halfW && abs(local[1]) <= d.halfH
	fire := cooldown <= 0 && inside && st.prevZ > 0 && z <= d.slack && st.armed
	st.prevZ = z
	if z > d.slack {
		st.armed = true
	}
	return fire
}

// Seed overwrites the state of id with depth z. Arming is an extra
// condition on top of the depth test: a state seeded at z <= slack cannot
// fire until the viewer has been seen beyond the slack band. A viewer that
// emerges from a teleport is seeded this way at the destination, so leaving
// and re-entering the destination is gated by its own cooldown alone.
func (d *CrossingDetector) Seed(id int, z float64) {
	d.states[id] = &crossingState{prevZ: z, armed: z > d.slack}
}

// Depth returns the last recorded depth of id.
func (d *CrossingDetector) Depth(id int) (float64, bool) {
	st, ok := d.states[id]
	if !ok {
		return 0, false
	}
	return st.prevZ, true
}

func (d *CrossingDetector) Forget(id int) { delete(d.states, id) }

func (d *CrossingDetector) Reset() { clear(d.states) }

func (d *CrossingDetector) Len() int { return len(d.states) }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

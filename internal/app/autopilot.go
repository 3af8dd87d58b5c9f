package app

import (
	"math"
	"math/rand"

	"portal-sandbox/internal/player"
	"portal-sandbox/internal/portal"
)

// Autopilot produces scripted input for headless runs. The same seed always
// yields the same input sequence.
type Autopilot struct {
	rng  *rand.Rand
	tick int

	turn      float64
	turnLeft  int
	shotEvery int
}

// NewAutopilot returns an autopilot that fires a portal every shotEvery
// ticks. shotEvery <= 0 never fires.
func NewAutopilot(seed int64, shotEvery int) *Autopilot {
	return &Autopilot{rng: rand.New(rand.NewSource(seed)), shotEvery: shotEvery}
}

// Next returns the input for the next tick.
func (p *Autopilot) Next() FrameInput {
	if p.turnLeft <= 0 {
		p.turn = (p.rng.Float64()*2 - 1) * 0.03
		p.turnLeft = 30 + p.rng.Intn(90)
	}
	p.turnLeft--

	in := FrameInput{
		Move: player.Input{
			Forward:   true,
			Sprint:    p.rng.Intn(4) == 0,
			Jump:      p.rng.Intn(120) == 0,
			LookYaw:   p.turn,
			LookPitch: math.Sin(float64(p.tick)*0.02) * 0.002,
		},
		Shoot: NoShot,
	}
	if p.shotEvery > 0 && p.tick > 0 && p.tick%p.shotEvery == 0 {
		in.Shoot = portal.AutoSlot
	}
	p.tick++
	return in
}

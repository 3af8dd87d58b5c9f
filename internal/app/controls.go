package app

import (
	"portal-sandbox/internal/player"
	"portal-sandbox/internal/portal"
)

// MouseSensitivity converts mouse motion in pixels to radians of look.
const MouseSensitivity = 0.0025

// Controls is the raw device state of one frame as a window runner sees it.
type Controls struct {
	Forward, Back, Left, Right bool
	Sprint, Jump               bool

	// MouseDX and MouseDY are pixel deltas since the previous frame;
	// positive is right and down.
	MouseDX, MouseDY float64

	// Primary and Secondary fire slot 0 and slot 1; Cycle fires the next
	// FIFO slot. They are edge triggered.
	Primary, Secondary, Cycle bool
	Reset                     bool
}

// FrameInput maps the device state to player intent. Primary wins over
// Secondary, which wins over Cycle.
func (c Controls) FrameInput() FrameInput {
	in := FrameInput{
		Move: player.Input{
			Forward:   c.Forward,
			Back:      c.Back,
			Left:      c.Left,
			Right:     c.Right,
			Sprint:    c.Sprint,
			Jump:      c.Jump,
			LookYaw:   -c.MouseDX * MouseSensitivity,
			LookPitch: -c.MouseDY * MouseSensitivity,
		},
		Shoot: NoShot,
		Reset: c.Reset,
	}
	switch {
	case c.Primary:
		in.Shoot = 0
	case c.Secondary:
		in.Shoot = 1
	case c.Cycle:
		in.Shoot = portal.AutoSlot
	}
	return in
}

package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-sandbox/internal/mathutil"
	"portal-sandbox/internal/scene"
)

// Locomotion tuning. Walk and sprint speeds are the per-second equivalents
// of 8 and 12 units scaled by 14 at a 60 Hz reference step.
const (
	WalkSpeed   = 8 * 14.0 / 60
	SprintSpeed = 12 * 14.0 / 60
	Damping     = 8.0
	Gravity     = 22.0
	JumpSpeed   = 9.0
	EyeHeight   = 1.0
	PlayBounds  = 12.0

	groundSlack = 0.01
	maxPitch    = math.Pi/2 - 0.01
)

// Input is one tick of player intent. Look deltas are radians.
type Input struct {
	Forward, Back, Left, Right bool
	Sprint                     bool
	Jump                       bool
	LookYaw                    float64
	LookPitch                  float64
}

// Viewer is the first-person camera: a scene node posed by yaw and pitch,
// plus a velocity integrated by Step.
type Viewer struct {
	Node *scene.Node

	yaw, pitch float64
	velocity   mgl64.Vec3
	projection scene.Projection
	bounds     float64
}

// NewViewer creates a viewer node at spawn looking down -Z.
func NewViewer(spawn mgl64.Vec3, proj scene.Projection) *Viewer {
	n := scene.NewNode("viewer")
	n.Position = spawn
	return &Viewer{Node: n, projection: proj, bounds: PlayBounds}
}

// SetBounds changes the square play-area half extent. Zero disables clamping.
func (v *Viewer) SetBounds(b float64) { v.bounds = b }

func (v *Viewer) WorldMatrix() mgl64.Mat4 { return v.Node.WorldMatrix() }

// SetWorldMatrix poses the viewer from a world transform. Yaw and pitch are
// re-derived from the new forward axis; roll and scale are dropped so the
// viewer stays upright.
func (v *Viewer) SetWorldMatrix(m mgl64.Mat4) {
	pos, rot, _ := mathutil.Decompose(m)
	v.Node.SetWorldMatrix(mgl64.Translate3D(pos[0], pos[1], pos[2]))
	v.yaw, v.pitch = mathutil.YawPitchFromForward(rot.Rotate(mathutil.CameraForward))
	v.pitch = mgl64.Clamp(v.pitch, -maxPitch, maxPitch)
	v.Node.Rotation = mathutil.YawPitch(v.yaw, v.pitch)
}

func (v *Viewer) Velocity() mgl64.Vec3 { return v.velocity }

func (v *Viewer) SetVelocity(vel mgl64.Vec3) { v.velocity = vel }

func (v *Viewer) Projection() scene.Projection { return v.projection }

// SetAspect updates the projection after a viewport resize.
func (v *Viewer) SetAspect(aspect float64) { v.projection.Aspect = aspect }

func (v *Viewer) Position() mgl64.Vec3 { return v.Node.WorldPosition() }

func (v *Viewer) Yaw() float64 { return v.yaw }

func (v *Viewer) Pitch() float64 { return v.pitch }

// Forward returns the unit view direction.
func (v *Viewer) Forward() mgl64.Vec3 {
	return mathutil.TransformDir(v.WorldMatrix(), mathutil.CameraForward).Normalize()
}

// Ray returns the placement ray through the screen centre.
func (v *Viewer) Ray() scene.Ray {
	return scene.Ray{Origin: v.Position(), Dir: v.Forward()}
}

// Camera returns the render camera for the viewer.
func (v *Viewer) Camera() scene.Camera {
	return scene.Camera{World: v.WorldMatrix(), Projection: v.projection}
}

// Step integrates one tick: look, walk with exponential damping on the
// horizontal axes, gravity and jump, then floor and play-area clamps.
func (v *Viewer) Step(dt float64, in Input) {
	if dt <= 0 {
		return
	}
	v.yaw += in.LookYaw
	v.pitch = mgl64.Clamp(v.pitch+in.LookPitch, -maxPitch, maxPitch)
	v.Node.Rotation = mathutil.YawPitch(v.yaw, v.pitch)

	forward := mgl64.Vec3{-math.Sin(v.yaw), 0, -math.Cos(v.yaw)}
	right := forward.Cross(mathutil.WorldUp).Normalize()

	var desired mgl64.Vec3
	if in.Forward {
		desired = desired.Add(forward)
	}
	if in.Back {
		desired = desired.Sub(forward)
	}
	if in.Left {
		desired = desired.Sub(right)
	}
	if in.Right {
		desired = desired.Add(right)
	}
	if desired.Len() > 0 {
		speed := WalkSpeed
		if in.Sprint {
			speed = SprintSpeed
		}
		desired = desired.Normalize().Mul(speed)
	}

	v.velocity[0] = damp(v.velocity[0], desired[0], Damping, dt)
	v.velocity[2] = damp(v.velocity[2], desired[2], Damping, dt)

	pos := v.Node.Position
	grounded := pos[1] <= EyeHeight+groundSlack
	v.velocity[1] -= Gravity * dt
	if in.Jump && grounded {
		v.velocity[1] = JumpSpeed
	}

	pos = pos.Add(v.velocity.Mul(dt))
	if pos[1] < EyeHeight {
		pos[1] = EyeHeight
		v.velocity[1] = 0
	}
	if v.bounds > 0 {
		pos[0] = mgl64.Clamp(pos[0], -v.bounds, v.bounds)
		pos[2] = mgl64.Clamp(pos[2], -v.bounds, v.bounds)
	}
	v.Node.Position = pos
}

// damp moves x toward target with exponential decay rate lambda.
func damp(x, target, lambda, dt float64) float64 {
	return x + (target-x)*(1-math.Exp(-lambda*dt))
}

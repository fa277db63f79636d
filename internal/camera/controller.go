package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/hullgate/internal/scene"
	"github.com/Faultbox/hullgate/pkg/math"
)

// Input is one tick of movement intent.
type Input struct {
	Forward, Back    bool
	Left, Right      bool
	Up, Down         bool
	TurnLeft         bool
	TurnRight        bool
	LookUp, LookDown bool
	MouseDX, MouseDY float32
}

// FlyController is a free-flying first-person controller. Yaw turns about
// the host's +Y axis and pitch is clamped short of straight up or down.
type FlyController struct {
	Yaw   float32
	Pitch float32

	MoveSpeed        float32 // units per second
	TurnSpeed        float32 // radians per second
	MouseSensitivity float32 // radians per pixel
	MaxPitch         float32
}

// NewFlyController creates a controller with default speeds.
func NewFlyController() *FlyController {
	return &FlyController{
		MoveSpeed:        3,
		TurnSpeed:        1.5,
		MouseSensitivity: 0.002,
		MaxPitch:         math32.Pi/2 - 0.01,
	}
}

// Orientation returns the rotation for the current yaw and pitch.
func (c *FlyController) Orientation() math.Mat4 {
	return math.QuatFromYawPitch(c.Yaw, c.Pitch).ToMat4()
}

// Forward returns the unit view direction.
func (c *FlyController) Forward() math.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	return math.Vec3{X: -sy * cp, Y: sp, Z: -cy * cp}
}

// RightVector returns the horizontal unit vector to the right of Forward.
func (c *FlyController) RightVector() math.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	return math.Vec3{X: cy, Z: -sy}
}

// Propose applies one tick of input to pose and returns the proposed
// host-local position and orientation. The pose is not modified; the
// caller hands the proposal to the boundary resolver.
func (c *FlyController) Propose(pose math.Mat4, in Input, dt float32) (math.Vec3, math.Mat4) {
	turn := c.TurnSpeed * dt
	if in.TurnLeft {
		c.Yaw += turn
	}
	if in.TurnRight {
		c.Yaw -= turn
	}
	if in.LookUp {
		c.Pitch += turn
	}
	if in.LookDown {
		c.Pitch -= turn
	}
	c.Yaw -= in.MouseDX * c.MouseSensitivity
	c.Pitch -= in.MouseDY * c.MouseSensitivity
	c.Pitch = math32.Max(-c.MaxPitch, math32.Min(c.MaxPitch, c.Pitch))
	c.Yaw = wrapAngle(c.Yaw)

	forward := c.Forward()
	right := c.RightVector()

	var move math.Vec3
	if in.Forward {
		move = move.Add(forward)
	}
	if in.Back {
		move = move.Sub(forward)
	}
	if in.Right {
		move = move.Add(right)
	}
	if in.Left {
		move = move.Sub(right)
	}
	if in.Up {
		move = move.Add(math.UnitY)
	}
	if in.Down {
		move = move.Sub(math.UnitY)
	}

	pos := pose.Translation().Add(move.Scale(c.MoveSpeed * dt))
	return pos, c.Orientation()
}

// SyncFromPose re-derives yaw and pitch from a pose, typically after a
// portal crossing rotated it.
func (c *FlyController) SyncFromPose(pose math.Mat4) {
	c.Yaw, c.Pitch = scene.YawPitchFromForward(pose.TransformDirection(math.Vec3{Z: -1}))
	c.Pitch = math32.Max(-c.MaxPitch, math32.Min(c.MaxPitch, c.Pitch))
}

func wrapAngle(a float32) float32 {
	for a > math32.Pi {
		a -= 2 * math32.Pi
	}
	for a < -math32.Pi {
		a += 2 * math32.Pi
	}
	return a
}

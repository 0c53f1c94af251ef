package control

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Field of view bounds in degrees.
const (
	MinFOV     = 1.0
	MaxFOV     = 80.0
	DefaultFOV = 50.0
)

var DefaultPosition = mgl64.Vec3{-200, 0, 0}

// Camera is a free flying camera described by a position and an orthonormal
// basis (left, up, forward).
type Camera struct {
	fov      float64
	position mgl64.Vec3
	left     mgl64.Vec3
	up       mgl64.Vec3
	forward  mgl64.Vec3
}

// NewCamera returns a camera at DefaultPosition looking at the origin.
func NewCamera() *Camera {
	c := &Camera{fov: DefaultFOV, position: DefaultPosition}
	c.ResetOrientation()
	return c
}

func (c *Camera) FOV() float64 { return c.fov }

func (c *Camera) SetFOV(fov float64) {
	c.fov = mgl64.Clamp(fov, MinFOV, MaxFOV)
}

func (c *Camera) ResetFOV() { c.fov = DefaultFOV }

func (c *Camera) Zoom(delta float64) { c.SetFOV(c.fov + delta) }

// ZoomFactor scales movement so narrow fields of view move slower.
func (c *Camera) ZoomFactor() float64 { return c.fov / DefaultFOV }

func (c *Camera) Position() mgl64.Vec3 { return c.position }

func (c *Camera) SetPosition(p mgl64.Vec3) { c.position = p }

func (c *Camera) ResetPosition() { c.position = DefaultPosition }

// Move translates the camera in its own frame: x along left, y along up and
// z along forward.
func (c *Camera) Move(delta mgl64.Vec3) {
	c.position = c.position.
		Add(c.left.Mul(delta.X())).
		Add(c.up.Mul(delta.Y())).
		Add(c.forward.Mul(delta.Z()))
}

func (c *Camera) Forward() mgl64.Vec3 { return c.forward }
func (c *Camera) Up() mgl64.Vec3      { return c.up }
func (c *Camera) Left() mgl64.Vec3    { return c.left }

func normalizeOr(v, fallback mgl64.Vec3) mgl64.Vec3 {
	if l := v.LenSqr(); l > mgl64.Epsilon {
		return v.Mul(1 / math.Sqrt(l))
	}
	return fallback
}

// ResetOrientation points the camera at the origin with the world Y axis up.
func (c *Camera) ResetOrientation() {
	c.forward = normalizeOr(c.position.Mul(-1), mgl64.Vec3{0, 0, 1})
	c.left = normalizeOr(mgl64.Vec3{0, 1, 0}.Cross(c.forward), mgl64.Vec3{1, 0, 0})
	c.up = c.forward.Cross(c.left)
}

func rotate(v mgl64.Vec3, angle float64, axis mgl64.Vec3) mgl64.Vec3 {
	return mgl64.QuatRotate(angle, axis).Rotate(v).Normalize()
}

func (c *Camera) Pitch(angle float64) {
	c.up = rotate(c.up, angle, c.left)
	c.forward = rotate(c.forward, angle, c.left)
}

func (c *Camera) Yaw(angle float64) {
	c.left = rotate(c.left, angle, c.up)
	c.forward = rotate(c.forward, angle, c.up)
}

func (c *Camera) Roll(angle float64) {
	c.left = rotate(c.left, angle, c.forward)
	c.up = rotate(c.up, angle, c.forward)
}

// View returns the world to camera transform.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.position, c.position.Add(c.forward), c.up)
}

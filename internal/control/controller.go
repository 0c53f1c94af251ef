package control

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/nihilo/internal/loop"
)

// Action is a discrete user command.
type Action int

const (
	ActionZoomIn Action = iota
	ActionZoomOut
	ActionSpeedUp
	ActionSlowDown
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	ActionForward
	ActionBackward
	ActionPitchUp
	ActionPitchDown
	ActionYawLeft
	ActionYawRight
	ActionRollLeft
	ActionRollRight
	ActionResetFOV
	ActionResetPosition
	ActionResetOrientation
	ActionResetSpeed
	ActionResetSimulation
	ActionToggleDebug
	ActionQuit

	actionCount
)

const (
	MinSpeed     = 0.1
	MaxSpeed     = 10.0
	DefaultSpeed = 1.0

	moveStep   = 2.0
	turnStep   = 0.05
	speedStep  = 0.1
	dragFactor = -0.005
	maxDragSq  = 1000
)

// Timings groups the timing of the three loops for diagnostics.
type Timings struct {
	Control    loop.Timing
	Simulation loop.Timing
	Render     loop.Timing
}

// ControlSnapshot is the immutable camera and display state of one control
// update.
type ControlSnapshot struct {
	FOV      float64
	View     mgl64.Mat4
	Position mgl64.Vec3
	Width    int
	Height   int
	Speed    float64
	Debug    bool
	Timing   Timings
}

// Controller buffers input events as pending impulses and applies them to
// the camera on Update. Input methods may be called from any goroutine;
// Update must only be called from the control loop.
type Controller struct {
	camera *Camera
	speed  float64
	debug  bool

	pending [actionCount]atomic.Int32
	dragX   atomic.Int64
	dragY   atomic.Int64
	width   atomic.Int64
	height  atomic.Int64

	// drag origin, owned by the input goroutine
	dragging bool
	prevX    int
	prevY    int
	onReset  func()
	timings  func() Timings
	quit     atomic.Bool
}

type Option func(*Controller)

// WithResetHandler is called from Update when a simulation reset was requested.
func WithResetHandler(fn func()) Option {
	return func(c *Controller) { c.onReset = fn }
}

// WithTimings sets the source of loop timings copied into every snapshot.
func WithTimings(fn func() Timings) Option {
	return func(c *Controller) { c.timings = fn }
}

func NewController(camera *Camera, opts ...Option) *Controller {
	c := &Controller{camera: camera, speed: DefaultSpeed}
	c.width.Store(80)
	c.height.Store(24)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) SetTimings(fn func() Timings) { c.timings = fn }
func (c *Controller) SetResetHandler(fn func())    { c.onReset = fn }

// Press queues one impulse of action.
func (c *Controller) Press(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	if a == ActionQuit {
		c.quit.Store(true)
		return
	}
	c.pending[a].Add(1)
}

// Resize records the display size in terminal cells.
func (c *Controller) Resize(width, height int) {
	c.width.Store(int64(width))
	c.height.Store(int64(height))
}

// Drag records a pointer drag position. The first call after Release only
// sets the origin; jumps larger than maxDragSq are dropped.
func (c *Controller) Drag(x, y int) {
	if !c.dragging {
		c.dragging = true
		c.prevX, c.prevY = x, y
		return
	}
	dx, dy := x-c.prevX, y-c.prevY
	c.prevX, c.prevY = x, y
	if dx*dx+dy*dy > maxDragSq {
		return
	}
	c.dragX.Add(int64(dx))
	c.dragY.Add(int64(dy))
}

func (c *Controller) Release() {
	c.dragging = false
}

// Scroll rolls the camera, one impulse per wheel notch.
func (c *Controller) Scroll(up bool) {
	if up {
		c.Press(ActionRollLeft)
	} else {
		c.Press(ActionRollRight)
	}
}

func (c *Controller) take(a Action) int {
	return int(c.pending[a].Swap(0))
}

// Update applies the pending input and returns a new snapshot. The second
// result reports that the user asked to quit.
func (c *Controller) Update() (*ControlSnapshot, bool) {
	cam := c.camera
	zoom := cam.ZoomFactor()

	if c.take(ActionResetFOV) > 0 {
		cam.ResetFOV()
	}
	if c.take(ActionResetPosition) > 0 {
		cam.SetPosition(mgl64.Vec3{})
	}
	if c.take(ActionResetOrientation) > 0 {
		cam.ResetOrientation()
	}
	if c.take(ActionResetSpeed) > 0 {
		c.speed = DefaultSpeed
	}
	if c.take(ActionToggleDebug)%2 == 1 {
		c.debug = !c.debug
	}
	if c.take(ActionResetSimulation) > 0 && c.onReset != nil {
		c.onReset()
	}

	if dz := c.take(ActionZoomOut) - c.take(ActionZoomIn); dz != 0 {
		cam.Zoom(float64(dz))
	}

	c.speed += float64(c.take(ActionSpeedUp)-c.take(ActionSlowDown)) * speedStep
	c.speed = mgl64.Clamp(c.speed, MinSpeed, MaxSpeed)

	delta := mgl64.Vec3{
		float64(c.take(ActionLeft) - c.take(ActionRight)),
		float64(c.take(ActionUp) - c.take(ActionDown)),
		float64(c.take(ActionForward) - c.take(ActionBackward)),
	}
	if delta.LenSqr() > mgl64.Epsilon {
		cam.Move(delta.Mul(moveStep * zoom * c.speed))
	}

	if n := c.take(ActionPitchUp) - c.take(ActionPitchDown); n != 0 {
		cam.Pitch(float64(n) * turnStep * zoom)
	}
	if n := c.take(ActionYawLeft) - c.take(ActionYawRight); n != 0 {
		cam.Yaw(float64(n) * turnStep * zoom)
	}
	if n := c.take(ActionRollLeft) - c.take(ActionRollRight); n != 0 {
		cam.Roll(float64(n) * turnStep)
	}

	if dx, dy := c.dragX.Swap(0), c.dragY.Swap(0); dx != 0 || dy != 0 {
		cam.Pitch(float64(dy) * dragFactor * zoom)
		cam.Yaw(float64(dx) * dragFactor * zoom)
	}

	snap := &ControlSnapshot{
		FOV:      cam.FOV(),
		View:     cam.View(),
		Position: cam.Position(),
		Width:    int(c.width.Load()),
		Height:   int(c.height.Load()),
		Speed:    c.speed,
		Debug:    c.debug,
	}
	if c.timings != nil {
		snap.Timing = c.timings()
	}
	return snap, c.quit.Load()
}

func (c *Controller) Camera() *Camera { return c.camera }

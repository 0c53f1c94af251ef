package integrators

import "github.com/san-kum/nihilo/internal/dynamo"

// RK4 is the classic fourth order Runge-Kutta method applied to the
// (position, velocity) pair. Four acceleration evaluations per step.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string                       { return "rk4" }
func (r *RK4) RequiresVelocityIndependence() bool { return false }

func (r *RK4) Advance(current dynamo.ParticleState, dt float64, accelerate dynamo.Accelerator) dynamo.ParticleState {
	half := dt * 0.5

	x1, v1 := current.Position, current.Velocity
	a1 := accelerate(current)

	x2 := x1.Add(v1.Mul(half))
	v2 := v1.Add(a1.Mul(half))
	a2 := accelerate(dynamo.ParticleState{Position: x2, Velocity: v2})

	x3 := x1.Add(v2.Mul(half))
	v3 := v1.Add(a2.Mul(half))
	a3 := accelerate(dynamo.ParticleState{Position: x3, Velocity: v3})

	x4 := x1.Add(v3.Mul(dt))
	v4 := v1.Add(a3.Mul(dt))
	a4 := accelerate(dynamo.ParticleState{Position: x4, Velocity: v4})

	dt6 := dt / 6.0
	return dynamo.ParticleState{
		Position:     x1.Add(v1.Add(v2.Mul(2)).Add(v3.Mul(2)).Add(v4).Mul(dt6)),
		Velocity:     v1.Add(a1.Add(a2.Mul(2)).Add(a3.Mul(2)).Add(a4).Mul(dt6)),
		Acceleration: a1.Add(a2.Mul(2)).Add(a3.Mul(2)).Add(a4).Mul(1.0 / 6.0),
	}
}

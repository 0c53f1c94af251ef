package integrators

import "github.com/san-kum/nihilo/internal/dynamo"

// Euler is the explicit first order method. It accepts any acceleration
// but its error grows linearly with the number of steps.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string                       { return "euler" }
func (e *Euler) RequiresVelocityIndependence() bool { return false }

func (e *Euler) Advance(current dynamo.ParticleState, dt float64, accelerate dynamo.Accelerator) dynamo.ParticleState {
	acc := accelerate(current)
	return dynamo.ParticleState{
		Position:     current.Position.Add(current.Velocity.Mul(dt)),
		Velocity:     current.Velocity.Add(acc.Mul(dt)),
		Acceleration: acc,
	}
}

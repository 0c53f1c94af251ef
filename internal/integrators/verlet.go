package integrators

import "github.com/san-kum/nihilo/internal/dynamo"

// Verlet is velocity Verlet. It is symplectic and needs a single new
// acceleration evaluation per step, but it reuses the acceleration stored
// in the current state so the acceleration must not depend on velocity.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string                       { return "verlet" }
func (v *Verlet) RequiresVelocityIndependence() bool { return true }

func (v *Verlet) Advance(current dynamo.ParticleState, dt float64, accelerate dynamo.Accelerator) dynamo.ParticleState {
	next := dynamo.ParticleState{
		Position: current.Position.
			Add(current.Velocity.Mul(dt)).
			Add(current.Acceleration.Mul(0.5 * dt * dt)),
		Velocity: current.Velocity,
	}
	next.Acceleration = accelerate(next)
	next.Velocity = current.Velocity.Add(current.Acceleration.Add(next.Acceleration).Mul(0.5 * dt))
	return next
}

package physics

import (
	"math"

	"github.com/san-kum/nihilo/internal/dynamo"
)

// C is the speed of light in vacuum in m/s.
const C = 299792458.0

const c2 = C * C

func ClassicAcceleration(force dynamo.Vec3, mass float64) dynamo.Vec3 {
	return force.Mul(1 / mass)
}

// RelativistAcceleration applies the Lorentz correction to the acceleration
// produced by force on a particle moving at velocity. The result is not
// finite when |velocity| >= C; keeping speeds below C is up to the caller.
func RelativistAcceleration(force dynamo.Vec3, mass float64, velocity dynamo.Vec3) dynamo.Vec3 {
	lorentz := 1 / math.Sqrt(1-velocity.LenSqr()/c2)
	longitudinal := velocity.Mul(force.Dot(velocity) / c2)
	return force.Sub(longitudinal).Mul(1 / (mass * lorentz))
}

// Classic is Newtonian motion: a = F/m.
type Classic struct{}

func NewClassic() *Classic { return &Classic{} }

func (c *Classic) Name() string            { return "classic" }
func (c *Classic) VelocityDependent() bool { return false }

func (c *Classic) Accelerate(force dynamo.Vec3, mass float64, _ dynamo.Vec3) dynamo.Vec3 {
	return ClassicAcceleration(force, mass)
}

// Relativist is special-relativistic motion. It depends on velocity and
// therefore cannot be integrated with Verlet.
type Relativist struct{}

func NewRelativist() *Relativist { return &Relativist{} }

func (r *Relativist) Name() string            { return "relativist" }
func (r *Relativist) VelocityDependent() bool { return true }

func (r *Relativist) Accelerate(force dynamo.Vec3, mass float64, velocity dynamo.Vec3) dynamo.Vec3 {
	return RelativistAcceleration(force, mass, velocity)
}

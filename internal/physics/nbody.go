package physics

import (
	"math"

	"github.com/san-kum/nihilo/internal/dynamo"
)

// PairPotential is the potential energy of two particles consistent with
// the softened force of Gravity. It tends to -G m1 m2 / r as softSq goes
// to zero.
func PairPotential(mass1, mass2, distance, softSq float64) float64 {
	if distance*distance < Epsilon {
		return 0
	}
	if softSq <= 0 {
		return -G * mass1 * mass2 / distance
	}
	soft := math.Sqrt(softSq)
	return -G * mass1 * mass2 * math.Atan(soft/distance) / soft
}

// Energy returns the total mechanical energy of the current generation.
func Energy(particles []dynamo.Particle, age uint64, softSq float64) float64 {
	ke := 0.0
	pe := 0.0

	for i := range particles {
		pi := &particles[i]
		si := pi.Current(age)
		ke += 0.5 * pi.Mass * si.Velocity.LenSqr()

		for j := i + 1; j < len(particles); j++ {
			pj := &particles[j]
			r := pj.Current(age).Position.Sub(si.Position).Len()
			pe += PairPotential(pi.Mass, pj.Mass, r, softSq)
		}
	}

	return ke + pe
}

func Momentum(particles []dynamo.Particle, age uint64) dynamo.Vec3 {
	var p dynamo.Vec3
	for i := range particles {
		p = p.Add(particles[i].Current(age).Velocity.Mul(particles[i].Mass))
	}
	return p
}

func AngularMomentum(particles []dynamo.Particle, age uint64) dynamo.Vec3 {
	var l dynamo.Vec3
	for i := range particles {
		s := particles[i].Current(age)
		l = l.Add(s.Position.Cross(s.Velocity).Mul(particles[i].Mass))
	}
	return l
}

// CenterOfMass returns the mass weighted mean position and velocity.
func CenterOfMass(particles []dynamo.Particle, age uint64) (position, velocity dynamo.Vec3) {
	total := 0.0
	for i := range particles {
		s := particles[i].Current(age)
		position = position.Add(s.Position.Mul(particles[i].Mass))
		velocity = velocity.Add(s.Velocity.Mul(particles[i].Mass))
		total += particles[i].Mass
	}
	if total == 0 {
		return dynamo.Vec3{}, dynamo.Vec3{}
	}
	return position.Mul(1 / total), velocity.Mul(1 / total)
}

// CircularSpeed is the speed of a circular orbit of radius r around a
// body with gravitational parameter mu = G*M.
func CircularSpeed(mu, r float64) float64 {
	return math.Sqrt(mu / r)
}

// KeplerPeriod is the orbital period for semi-major axis a (Kepler's third law).
func KeplerPeriod(mu, a float64) float64 {
	return 2 * math.Pi * math.Sqrt(a*a*a/mu)
}

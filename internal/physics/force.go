package physics

import (
	"math"

	"github.com/san-kum/nihilo/internal/dynamo"
)

const (
	// G is the gravitational constant in SI units (m^3 kg^-1 s^-2).
	G = 6.67430e-11

	// Epsilon is the squared separation below which two particles are
	// considered co-located and exert no force on each other.
	Epsilon = 1.1920929e-07
)

// Gravity computes the force exerted by particle 2 on particle 1.
//
// softSq is the squared softening length. It bounds the force magnitude
// as the separation approaches zero; see
// https://en.wikipedia.org/wiki/N-body_simulation#Softening.
func Gravity(mass1, mass2 float64, pos1, pos2 dynamo.Vec3, softSq float64) dynamo.Vec3 {
	delta := pos2.Sub(pos1)
	length2 := delta.LenSqr()
	if length2 < Epsilon {
		return dynamo.Vec3{}
	}
	return delta.Mul(G * mass1 * mass2 / ((length2 + softSq) * math.Sqrt(length2)))
}

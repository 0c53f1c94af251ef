package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Vec3 is the vector type used for positions, velocities, accelerations
// and forces.
type Vec3 = mgl64.Vec3

// ParticleInfo holds the constants of a particle. Set at creation, never mutated.
type ParticleInfo struct {
	Name   string
	Mass   float64
	Radius float64
	Color  colorful.Color
}

// ParticleState is the kinematic record of a particle for one step.
// Acceleration is the value computed during the step that produced the
// state; integrators such as Verlet reuse it.
type ParticleState struct {
	Position     Vec3
	Velocity     Vec3
	Acceleration Vec3
}

func (s ParticleState) IsValid() bool {
	for _, v := range [...]Vec3{s.Position, s.Velocity, s.Acceleration} {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}

// Particle is a ParticleInfo plus two state generations.
type Particle struct {
	ParticleInfo
	State [2]ParticleState
}

func NewParticle(info ParticleInfo) Particle {
	return Particle{ParticleInfo: info}
}

// Generation returns the slot holding the current state at the given age.
func Generation(age uint64) int {
	return int(age % 2)
}

// Current returns the stable state at the given age.
func (p *Particle) Current(age uint64) *ParticleState {
	return &p.State[Generation(age)]
}

// Next returns the slot written by the step that moves age to age+1.
func (p *Particle) Next(age uint64) *ParticleState {
	return &p.State[Generation(age+1)]
}

type Simulation struct {
	Age       uint64
	Particles []Particle
}

// Accelerator maps a particle state, possibly a hypothetical one built by a
// multi-stage integrator, to an acceleration.
type Accelerator func(state ParticleState) Vec3

type Integrator interface {
	Name() string
	Advance(current ParticleState, dt float64, accelerate Accelerator) ParticleState
	// RequiresVelocityIndependence reports whether the scheme is only valid
	// for accelerations that do not depend on velocity.
	RequiresVelocityIndependence() bool
}

// Motion converts a force into an acceleration.
type Motion interface {
	Name() string
	Accelerate(force Vec3, mass float64, velocity Vec3) Vec3
	VelocityDependent() bool
}

// Metric observes the simulation after each step.
type Metric interface {
	Name() string
	Observe(s *Simulation)
	Value() float64
	Reset()
}

// Package dynamo provides the core data model of the N-body simulation.
//
// The package defines the fundamental types shared by the force model,
// the integrators and the simulator:
//
//   - [ParticleInfo]: immutable per-particle constants (mass, radius, color)
//   - [ParticleState]: kinematic record (position, velocity, acceleration)
//   - [Particle]: info plus two state generations indexed by age parity
//   - [Simulation]: the age counter and the ordered particle population
//   - [Integrator]: one-step particle integrator interface
//   - [Motion]: force to acceleration conversion
//
// # Generations
//
// Each particle carries two [ParticleState] slots. At age a, the slot
// a%2 holds the stable current state and the slot (a+1)%2 is the one being
// written by the next step. Readers only read the current generation, writers
// only write the other one:
//
//	cur := p.Current(sim.Age)
//	next := p.Next(sim.Age)
//	*next = integ.Advance(*cur, dt, accelerate)
//
// # Thread Safety
//
// A [Simulation] is owned by a single goroutine. Cross-goroutine exchange
// happens through immutable snapshots, see package exchange.
package dynamo

// Package physics provides the force and motion models of the simulation.
//
// All functions are pure and work in SI units:
//
//   - [Gravity]: softened pairwise gravitational force
//   - [ClassicAcceleration]: Newtonian a = F/m
//   - [RelativistAcceleration]: Lorentz corrected acceleration
//   - [Energy], [Momentum], [AngularMomentum]: conserved quantities used to
//     monitor integrator drift
//
// [Classic] and [Relativist] implement [dynamo.Motion] so a simulator can
// select its motion model at construction.
//
// # Energy Conservation
//
// The potential used by [Energy] is the exact potential of the softened
// force, so a symplectic integrator keeps the total bounded:
//
//	e0 := physics.Energy(sim.Particles, sim.Age, softSq)
//	// ... steps
//	drift := math.Abs(physics.Energy(sim.Particles, sim.Age, softSq)-e0) / math.Abs(e0)
package physics

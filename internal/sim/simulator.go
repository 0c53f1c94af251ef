package sim

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/physics"
)

// parallelChunk is the minimum number of particles handed to one worker.
const parallelChunk = 16

// Simulator owns a Simulation and advances it one step per Update.
//
// Update, Snapshot, SnapshotInto and the read accessors must all be called
// from the same goroutine. Reset may be called from any goroutine.
type Simulator struct {
	sim     dynamo.Simulation
	initial []dynamo.ParticleState
	metrics []dynamo.Metric

	integrator dynamo.Integrator
	motion     dynamo.Motion
	dt         float64
	softSq     float64
	scale      float64
	workers    int
	logger     *log.Logger

	reset    atomic.Bool
	sequence uint64
}

// New creates a simulator for the given particles. initial holds the state
// every particle is set to on the first Update and after each Reset.
func New(infos []dynamo.ParticleInfo, initial []dynamo.ParticleState, opts ...Option) (*Simulator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if len(infos) != len(initial) {
		return nil, fmt.Errorf("%w: %d particles, %d initial states", dynamo.ErrDimensionMismatch, len(infos), len(initial))
	}
	if err := validate(o); err != nil {
		return nil, err
	}
	for i, info := range infos {
		if info.Mass <= 0 || math.IsNaN(info.Mass) || math.IsInf(info.Mass, 0) {
			return nil, fmt.Errorf("%w: particle %q has mass %g", dynamo.ErrParameterBounds, info.Name, info.Mass)
		}
		if !initial[i].IsValid() {
			return nil, fmt.Errorf("%w: initial state of %q", dynamo.ErrInvalidState, info.Name)
		}
	}

	s := &Simulator{
		initial:    append([]dynamo.ParticleState(nil), initial...),
		integrator: o.integrator,
		motion:     o.motion,
		dt:         o.dt,
		softSq:     o.softSq,
		scale:      o.scale,
		workers:    o.workers,
		logger:     o.logger,
	}
	s.sim.Particles = make([]dynamo.Particle, len(infos))
	for i, info := range infos {
		s.sim.Particles[i] = dynamo.NewParticle(info)
	}
	s.reset.Store(true)

	s.logger.Debug("simulator created",
		"particles", len(infos),
		"integrator", o.integrator.Name(),
		"motion", o.motion.Name(),
		"dt", o.dt,
	)
	return s, nil
}

func validate(o options) error {
	if o.integrator == nil || o.motion == nil {
		return fmt.Errorf("%w: integrator and motion are required", dynamo.ErrParameterBounds)
	}
	if o.integrator.RequiresVelocityIndependence() && o.motion.VelocityDependent() {
		return fmt.Errorf("%w: %s cannot integrate %s motion",
			dynamo.ErrIncompatibleIntegrator, o.integrator.Name(), o.motion.Name())
	}
	if !(o.dt > 0) || math.IsInf(o.dt, 0) {
		return fmt.Errorf("%w: time step %g", dynamo.ErrParameterBounds, o.dt)
	}
	if !(o.softSq >= 0) || math.IsInf(o.softSq, 0) {
		return fmt.Errorf("%w: softening %g", dynamo.ErrParameterBounds, o.softSq)
	}
	if !(o.scale > 0) || math.IsInf(o.scale, 0) {
		return fmt.Errorf("%w: scale %g", dynamo.ErrParameterBounds, o.scale)
	}
	return nil
}

// Reset requests the initial state to be restored on the next Update.
func (s *Simulator) Reset() {
	s.reset.Store(true)
}

// Update applies a pending reset, or else advances every particle by one
// time step. The returned error reports the first particle whose new state
// is not finite; the step is kept either way.
func (s *Simulator) Update() error {
	particles := s.sim.Particles

	s.sequence++
	if s.reset.Swap(false) {
		s.sim.Age = 0
		for i := range particles {
			particles[i].State[0] = s.initial[i]
		}
		// Seed accelerations so Verlet has a valid first half step.
		acc := make([]dynamo.Vec3, len(particles))
		for i := range particles {
			acc[i] = s.acceleration(i, 0, particles[i].State[0])
		}
		for i := range particles {
			particles[i].State[0].Acceleration = acc[i]
		}
		for _, m := range s.metrics {
			m.Reset()
			m.Observe(&s.sim)
		}
		s.logger.Debug("simulation reset", "particles", len(particles))
		return nil
	}

	prev := dynamo.Generation(s.sim.Age)
	s.sim.Age++
	next := dynamo.Generation(s.sim.Age)

	dynamo.ParallelFor(len(particles), parallelChunk, s.workers, func(i int) {
		p := &particles[i]
		p.State[next] = s.integrator.Advance(p.State[prev], s.dt, func(state dynamo.ParticleState) dynamo.Vec3 {
			return s.acceleration(i, prev, state)
		})
	})

	for _, m := range s.metrics {
		m.Observe(&s.sim)
	}

	for i := range particles {
		if !particles[i].State[next].IsValid() {
			return &dynamo.StepError{Age: s.sim.Age, Particle: i, Wrapped: dynamo.ErrInvalidState}
		}
	}
	return nil
}

// acceleration of particle i if it were in state, against every other
// particle in generation gen.
func (s *Simulator) acceleration(i, gen int, state dynamo.ParticleState) dynamo.Vec3 {
	particles := s.sim.Particles
	mass := particles[i].Mass

	var force dynamo.Vec3
	for j := range particles {
		// self is excluded, also for hypothetical stage states
		if j == i {
			continue
		}
		p2 := &particles[j]
		force = force.Add(physics.Gravity(mass, p2.Mass, state.Position, p2.State[gen].Position, s.softSq))
	}
	return s.motion.Accelerate(force, mass, state.Velocity)
}

// Snapshot returns a new snapshot of the current generation.
func (s *Simulator) Snapshot() *SimulationSnapshot {
	out := &SimulationSnapshot{Particles: make([]ParticleSnapshot, 0, len(s.sim.Particles))}
	s.SnapshotInto(out)
	return out
}

// SnapshotInto overwrites out with the current generation, reusing its
// particle slice capacity. Snapshots taken between two updates are equal.
func (s *Simulator) SnapshotInto(out *SimulationSnapshot) {
	out.Age = s.sim.Age
	out.Sequence = s.sequence
	out.Particles = out.Particles[:0]

	inv := 1 / s.scale
	for i := range s.sim.Particles {
		p := &s.sim.Particles[i]
		out.Particles = append(out.Particles, ParticleSnapshot{
			Position: p.Current(s.sim.Age).Position.Mul(inv),
			Radius:   p.Radius,
			Color:    p.Color,
		})
	}
}

// AddMetric registers a metric. Metrics are reset and observe the initial
// state on every reset, then observe the simulation after each step.
func (s *Simulator) AddMetric(m dynamo.Metric) {
	s.metrics = append(s.metrics, m)
}

func (s *Simulator) Age() uint64 { return s.sim.Age }
func (s *Simulator) Len() int    { return len(s.sim.Particles) }

// Elapsed returns the simulated time since the last reset in seconds.
func (s *Simulator) Elapsed() float64 { return float64(s.sim.Age) * s.dt }

func (s *Simulator) TimeStep() float64  { return s.dt }
func (s *Simulator) Softening() float64 { return s.softSq }

func (s *Simulator) Info(i int) dynamo.ParticleInfo {
	return s.sim.Particles[i].ParticleInfo
}

// State returns the current state of particle i.
func (s *Simulator) State(i int) dynamo.ParticleState {
	return *s.sim.Particles[i].Current(s.sim.Age)
}

func (s *Simulator) Energy() float64 {
	return physics.Energy(s.sim.Particles, s.sim.Age, s.softSq)
}

func (s *Simulator) Momentum() dynamo.Vec3 {
	return physics.Momentum(s.sim.Particles, s.sim.Age)
}

func (s *Simulator) Integrator() dynamo.Integrator { return s.integrator }
func (s *Simulator) Motion() dynamo.Motion         { return s.motion }

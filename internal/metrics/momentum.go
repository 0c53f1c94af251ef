package metrics

import (
	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/physics"
)

// Momentum tracks the change of total linear momentum relative to the sum
// of the bodies' momentum magnitudes in the first observed state.
type Momentum struct {
	name     string
	initial  dynamo.Vec3
	norm     float64
	maxDrift float64
	samples  int
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum_drift"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(s *dynamo.Simulation) {
	p := physics.Momentum(s.Particles, s.Age)
	if m.samples == 0 {
		m.initial = p
		for i := range s.Particles {
			m.norm += s.Particles[i].Mass * s.Particles[i].Current(s.Age).Velocity.Len()
		}
	}
	m.samples++

	if m.norm == 0 {
		return
	}
	m.maxDrift = max(m.maxDrift, p.Sub(m.initial).Len()/m.norm)
}

func (m *Momentum) Value() float64 {
	return m.maxDrift
}

func (m *Momentum) Reset() {
	m.initial = dynamo.Vec3{}
	m.norm = 0
	m.maxDrift = 0
	m.samples = 0
}

package metrics

import (
	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/physics"
)

// Stability is the fraction of observed states in which every particle
// stays within threshold meters of the center of mass.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sim *dynamo.Simulation) {
	s.samples++
	com, _ := physics.CenterOfMass(sim.Particles, sim.Age)
	for i := range sim.Particles {
		if sim.Particles[i].Current(sim.Age).Position.Sub(com).Len() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

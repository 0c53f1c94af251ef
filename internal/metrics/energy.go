package metrics

import (
	"math"

	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/physics"
)

// Energy is the mean total energy over the observed states.
type Energy struct {
	name        string
	softSq      float64
	samples     int
	totalEnergy float64
}

func NewEnergy(softSq float64) *Energy {
	return &Energy{
		name:   "energy",
		softSq: softSq,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *dynamo.Simulation) {
	e.totalEnergy += physics.Energy(s.Particles, s.Age, e.softSq)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks |E - E0| / |E0| where E0 is the first observed energy.
// Value is the largest drift seen; History keeps one sample every stride
// observations.
type EnergyDrift struct {
	name          string
	softSq        float64
	stride        int
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
	history       []float64
}

func NewEnergyDrift(softSq float64, stride int) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		softSq: softSq,
		stride: max(stride, 1),
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s *dynamo.Simulation) {
	energy := physics.Energy(s.Particles, s.Age, e.softSq)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy

	drift := e.Current()
	e.maxDrift = math.Max(e.maxDrift, drift)
	if e.samples%e.stride == 0 {
		e.history = append(e.history, drift)
	}
	e.samples++
}

// Current returns the drift of the last observed state.
func (e *EnergyDrift) Current() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return math.Abs(e.currentEnergy-e.initialEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) History() []float64 {
	return e.history
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
	e.history = e.history[:0]
}

package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/sim"
)

// Divergence is the separation history of a reference simulation and a
// copy whose particle was displaced along x.
type Divergence struct {
	Particle     int
	Perturbation float64
	TimeStep     float64
	Separation   []float64
}

// Exponent returns the finite-time Lyapunov estimate ln(d(t)/d0)/t over the
// whole run. A positive value means the perturbation grew.
func (d *Divergence) Exponent() float64 {
	n := len(d.Separation)
	if n == 0 || d.Separation[n-1] <= 0 {
		return 0
	}
	return math.Log(d.Separation[n-1]/d.Perturbation) / (float64(n) * d.TimeStep)
}

// MeasureDivergence runs two simulations for steps steps, the second with
// particle displaced by perturbation meters, and records the distance
// between the two copies of that particle after every step.
func MeasureDivergence(
	ctx context.Context,
	infos []dynamo.ParticleInfo,
	initial []dynamo.ParticleState,
	particle int,
	perturbation float64,
	steps int,
	opts ...sim.Option,
) (*Divergence, error) {
	if particle < 0 || particle >= len(initial) {
		return nil, fmt.Errorf("%w: particle %d of %d", dynamo.ErrParameterBounds, particle, len(initial))
	}
	if !(perturbation > 0) {
		return nil, fmt.Errorf("%w: perturbation %g", dynamo.ErrParameterBounds, perturbation)
	}

	perturbed := append([]dynamo.ParticleState(nil), initial...)
	perturbed[particle].Position[0] += perturbation

	ref, err := sim.New(infos, initial, opts...)
	if err != nil {
		return nil, err
	}
	alt, err := sim.New(infos, perturbed, opts...)
	if err != nil {
		return nil, err
	}

	// apply the initial states
	if err := ref.Update(); err != nil {
		return nil, err
	}
	if err := alt.Update(); err != nil {
		return nil, err
	}

	d := &Divergence{
		Particle:     particle,
		Perturbation: perturbation,
		TimeStep:     ref.TimeStep(),
		Separation:   make([]float64, 0, steps),
	}
	for range steps {
		if err := ctx.Err(); err != nil {
			return d, err
		}
		if err := ref.Update(); err != nil {
			return d, err
		}
		if err := alt.Update(); err != nil {
			return d, err
		}
		sep := alt.State(particle).Position.Sub(ref.State(particle).Position).Len()
		d.Separation = append(d.Separation, sep)
	}
	return d, nil
}

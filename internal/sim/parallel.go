package sim

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/nihilo/internal/dynamo"
)

// EnsembleRun is one member of an ensemble.
type EnsembleRun struct {
	Name    string
	Options []Option
}

type EnsembleResult struct {
	Name          string
	Integrator    string
	Motion        string
	Steps         int
	InitialEnergy float64
	FinalEnergy   float64
	EnergyDrift   float64
	Elapsed       time.Duration
}

// Ensemble advances independently configured simulators of the same system
// concurrently, one goroutine per run.
type Ensemble struct {
	infos   []dynamo.ParticleInfo
	initial []dynamo.ParticleState
	steps   int
	runs    []EnsembleRun
}

func NewEnsemble(infos []dynamo.ParticleInfo, initial []dynamo.ParticleState, steps int) *Ensemble {
	return &Ensemble{infos: infos, initial: initial, steps: steps}
}

func (e *Ensemble) Add(name string, opts ...Option) {
	e.runs = append(e.runs, EnsembleRun{Name: name, Options: opts})
}

// Run executes every member and returns results in the order they were
// added. The first failing member cancels the others.
func (e *Ensemble) Run(ctx context.Context) ([]EnsembleResult, error) {
	results := make([]EnsembleResult, len(e.runs))

	g, ctx := errgroup.WithContext(ctx)
	for i, run := range e.runs {
		g.Go(func() error {
			opts := append([]Option{WithWorkers(1)}, run.Options...)
			s, err := New(e.infos, e.initial, opts...)
			if err != nil {
				return err
			}
			if err := s.Update(); err != nil {
				return err
			}

			start := time.Now()
			e0 := s.Energy()
			for step := 0; step < e.steps; step++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := s.Update(); err != nil {
					return err
				}
			}
			e1 := s.Energy()

			results[i] = EnsembleResult{
				Name:          run.Name,
				Integrator:    s.Integrator().Name(),
				Motion:        s.Motion().Name(),
				Steps:         e.steps,
				InitialEnergy: e0,
				FinalEnergy:   e1,
				Elapsed:       time.Since(start),
			}
			if e0 != 0 {
				results[i].EnergyDrift = math.Abs(e1-e0) / math.Abs(e0)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

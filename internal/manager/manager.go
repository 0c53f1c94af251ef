// Package manager wires the control, simulation and render loops together.
//
// Each loop runs on its own goroutine at its own frequency. The control and
// simulation loops publish immutable snapshots into atomic cells; the render
// loop loads the latest of both and never waits on either producer.
package manager

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/nihilo/internal/control"
	"github.com/san-kum/nihilo/internal/exchange"
	"github.com/san-kum/nihilo/internal/loop"
	"github.com/san-kum/nihilo/internal/sim"
)

const (
	DefaultControlFrequency    = 60.0
	DefaultSimulationFrequency = 30.0
	DefaultRenderFrequency     = 60.0
)

// Renderer draws a frame. It must be idempotent when changed is false.
type Renderer interface {
	Render(ctrl *control.ControlSnapshot, snap *sim.SimulationSnapshot, changed bool) error
}

// Controls produces the control snapshot of one tick and reports whether the
// process should stop.
type Controls interface {
	Update() (*control.ControlSnapshot, bool)
}

// Simulation is the part of *sim.Simulator driven by the simulation loop.
type Simulation interface {
	Update() error
	Snapshot() *sim.SimulationSnapshot
}

type options struct {
	controlHz    float64
	simulationHz float64
	renderHz     float64
	logger       *log.Logger
}

type Option func(*options)

func WithControlFrequency(hz float64) Option {
	return func(o *options) { o.controlHz = hz }
}

func WithSimulationFrequency(hz float64) Option {
	return func(o *options) { o.simulationHz = hz }
}

func WithRenderFrequency(hz float64) Option {
	return func(o *options) { o.renderHz = hz }
}

func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

type Manager struct {
	controls   Controls
	simulation Simulation
	renderer   Renderer
	logger     *log.Logger

	controlLoop    *loop.Loop
	simulationLoop *loop.Loop
	renderLoop     *loop.Loop

	controlSnapshot    *exchange.Cell[control.ControlSnapshot]
	simulationSnapshot *exchange.Cell[sim.SimulationSnapshot]
	// owned by the render loop
	lastRendered exchange.Tracker[sim.SimulationSnapshot]

	stopped atomic.Bool
}

func New(controls Controls, simulation Simulation, renderer Renderer, opts ...Option) (*Manager, error) {
	o := options{
		controlHz:    DefaultControlFrequency,
		simulationHz: DefaultSimulationFrequency,
		renderHz:     DefaultRenderFrequency,
		logger:       log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		controls:           controls,
		simulation:         simulation,
		renderer:           renderer,
		logger:             o.logger,
		controlSnapshot:    exchange.NewCell[control.ControlSnapshot](nil),
		simulationSnapshot: exchange.NewCell[sim.SimulationSnapshot](nil),
	}

	m.controlLoop = loop.New(m.updateControls, loop.WithName("control"), loop.WithLogger(o.logger))
	m.simulationLoop = loop.New(m.updateSimulation, loop.WithName("simulation"), loop.WithLogger(o.logger))
	m.renderLoop = loop.New(m.updateRender, loop.WithName("render"), loop.WithLogger(o.logger))

	for _, target := range []struct {
		loop *loop.Loop
		hz   float64
	}{
		{m.controlLoop, o.controlHz},
		{m.simulationLoop, o.simulationHz},
		{m.renderLoop, o.renderHz},
	} {
		if err := target.loop.SetTargetFrequency(target.hz); err != nil {
			return nil, fmt.Errorf("%s loop: %w", target.loop.Name(), err)
		}
	}
	return m, nil
}

func (m *Manager) updateControls() error {
	if m.stopped.Load() {
		m.controlLoop.Stop()
		return nil
	}
	snap, stop := m.controls.Update()
	if snap != nil {
		m.controlSnapshot.Publish(snap)
	}
	if stop {
		m.logger.Info("stop requested by controls")
		m.Stop()
	}
	return nil
}

func (m *Manager) updateSimulation() error {
	if m.stopped.Load() {
		m.simulationLoop.Stop()
		return nil
	}
	err := m.simulation.Update()
	// a failed step is kept, so its snapshot is still published
	m.simulationSnapshot.Publish(m.simulation.Snapshot())
	return err
}

func (m *Manager) updateRender() error {
	if m.stopped.Load() {
		m.renderLoop.Stop()
		return nil
	}
	ctrl := m.controlSnapshot.Load()
	snap := m.simulationSnapshot.Load()
	if ctrl == nil || snap == nil {
		return nil
	}
	return m.renderer.Render(ctrl, snap, m.lastRendered.Observe(snap))
}

// Run starts the three loops and blocks until all of them returned. Stop or
// cancelling ctx ends the run.
func (m *Manager) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.Stop()
		case <-done:
		}
	}()

	m.logger.Info("starting loops",
		"control", m.controlLoop.TargetFrequency(),
		"simulation", m.simulationLoop.TargetFrequency(),
		"render", m.renderLoop.TargetFrequency())

	var g errgroup.Group
	for _, l := range []*loop.Loop{m.controlLoop, m.simulationLoop, m.renderLoop} {
		g.Go(l.Run)
	}
	err := g.Wait()

	m.logger.Info("loops stopped",
		"control", m.controlLoop.Iterations(),
		"simulation", m.simulationLoop.Iterations(),
		"render", m.renderLoop.Iterations())
	return err
}

// Stop cascades to the three loops. Safe to call from any goroutine,
// including from inside a loop task, and before Run.
func (m *Manager) Stop() {
	m.stopped.Store(true)
	m.controlLoop.Stop()
	m.simulationLoop.Stop()
	m.renderLoop.Stop()
}

func (m *Manager) Stopped() bool { return m.stopped.Load() }

// Timings reports the three loops' periods. It is passed to the controller
// so the debug overlay can show them.
func (m *Manager) Timings() control.Timings {
	return control.Timings{
		Control:    m.controlLoop.Timing(),
		Simulation: m.simulationLoop.Timing(),
		Render:     m.renderLoop.Timing(),
	}
}

func (m *Manager) ControlSnapshot() *control.ControlSnapshot {
	return m.controlSnapshot.Load()
}

func (m *Manager) SimulationSnapshot() *sim.SimulationSnapshot {
	return m.simulationSnapshot.Load()
}

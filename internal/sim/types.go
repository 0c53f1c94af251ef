package sim

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/integrators"
	"github.com/san-kum/nihilo/internal/physics"
)

const (
	// DefaultTimeStep is one simulated day per update.
	DefaultTimeStep = 86400.0

	// DefaultSoftening is the squared softening length in m^2.
	DefaultSoftening = 1.0

	// DefaultScale converts meters to display units.
	DefaultScale = 1e10
)

// ParticleSnapshot is the display view of one particle.
type ParticleSnapshot struct {
	Position dynamo.Vec3
	Radius   float64
	Color    colorful.Color
}

// SimulationSnapshot is an immutable copy of the displayable state of the
// simulation at some age. Once handed to another goroutine it must not be
// written to.
type SimulationSnapshot struct {
	Age uint64
	// Sequence is the simulator's state version, advanced by every Update.
	Sequence  uint64
	Particles []ParticleSnapshot
}

type options struct {
	integrator dynamo.Integrator
	motion     dynamo.Motion
	dt         float64
	softSq     float64
	scale      float64
	workers    int
	logger     *log.Logger
}

func defaultOptions() options {
	return options{
		integrator: integrators.NewVerlet(),
		motion:     physics.NewClassic(),
		dt:         DefaultTimeStep,
		softSq:     DefaultSoftening,
		scale:      DefaultScale,
		logger:     log.New(io.Discard),
	}
}

type Option func(*options)

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(o *options) { o.integrator = integ }
}

func WithMotion(m dynamo.Motion) Option {
	return func(o *options) { o.motion = m }
}

// WithTimeStep sets the simulated seconds advanced by each update.
func WithTimeStep(dt float64) Option {
	return func(o *options) { o.dt = dt }
}

// WithSoftening sets the squared softening length passed to the force model.
func WithSoftening(softSq float64) Option {
	return func(o *options) { o.softSq = softSq }
}

// WithScale sets the divisor applied to positions in snapshots.
func WithScale(scale float64) Option {
	return func(o *options) { o.scale = scale }
}

// WithWorkers bounds the goroutines used for one step. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

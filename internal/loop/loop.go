// Package loop runs a unit of work repeatedly at a target frequency.
//
// Scheduling is deadline based: each deadline is the previous one plus the
// target period, so a slow iteration followed by fast ones does not drift.
// When an iteration overruns its deadline the schedule is rebased to the
// current time instead of running back to back to catch up.
//
// Errors and panics escaping the task are logged and the loop continues.
package loop

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrAlreadyRunning   = errors.New("loop: already running")
	ErrInvalidFrequency = errors.New("loop: frequency must be a positive finite number")
	ErrInvalidPeriod    = errors.New("loop: period must be positive")
)

// DefaultFrequency is used when no frequency option is given.
const DefaultFrequency = 60.0

// Timing is a point in time view of the loop's periods.
type Timing struct {
	// Current is the measured period, never reported below Target.
	Current time.Duration
	Target  time.Duration
}

func (t Timing) Frequency() float64 {
	return frequency(t.Current)
}

func (t Timing) TargetFrequency() float64 {
	return frequency(t.Target)
}

func frequency(period time.Duration) float64 {
	if period <= 0 {
		return 0
	}
	return float64(time.Second) / float64(period)
}

type Loop struct {
	task   func() error
	name   string
	logger *log.Logger

	running    atomic.Bool
	target     atomic.Int64
	current    atomic.Int64
	iterations atomic.Uint64
	failures   atomic.Uint64

	wake chan struct{}
}

type Option func(*Loop)

func WithName(name string) Option {
	return func(l *Loop) { l.name = name }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFrequency sets the initial target frequency. Invalid values are
// ignored in favor of DefaultFrequency.
func WithFrequency(hz float64) Option {
	return func(l *Loop) {
		_ = l.SetTargetFrequency(hz)
	}
}

func New(task func() error, opts ...Option) *Loop {
	l := &Loop{
		task:   task,
		name:   "loop",
		logger: log.New(io.Discard),
		wake:   make(chan struct{}, 1),
	}
	l.target.Store(int64(periodOf(DefaultFrequency)))
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func periodOf(hz float64) time.Duration {
	return time.Duration(float64(time.Second) / hz)
}

func (l *Loop) Name() string { return l.name }

func (l *Loop) SetTargetFrequency(hz float64) error {
	if !(hz > 0) || math.IsInf(hz, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidFrequency, hz)
	}
	return l.SetTargetPeriod(periodOf(hz))
}

// SetTargetPeriod changes the period. It takes effect on the next deadline.
func (l *Loop) SetTargetPeriod(period time.Duration) error {
	if period <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}
	l.target.Store(int64(period))
	return nil
}

func (l *Loop) TargetPeriod() time.Duration {
	return time.Duration(l.target.Load())
}

func (l *Loop) TargetFrequency() float64 {
	return frequency(l.TargetPeriod())
}

// Timing may be read from any goroutine.
func (l *Loop) Timing() Timing {
	target := time.Duration(l.target.Load())
	return Timing{
		Current: max(time.Duration(l.current.Load()), target),
		Target:  target,
	}
}

func (l *Loop) Iterations() uint64 { return l.iterations.Load() }
func (l *Loop) Failures() uint64   { return l.failures.Load() }
func (l *Loop) IsRunning() bool    { return l.running.Load() }

// Run executes the task until Stop is called. It blocks the calling
// goroutine and fails with ErrAlreadyRunning if the loop is already running.
func (l *Loop) Run() error {
	if l.running.Swap(true) {
		return ErrAlreadyRunning
	}

	select {
	case <-l.wake:
	default:
	}

	l.logger.Debug("loop started", "loop", l.name, "hz", l.TargetFrequency())

	deadline := time.Now()
	last := deadline
	first := true
	for l.running.Load() {
		start := time.Now()
		if !first {
			l.current.Store(int64(start.Sub(last)))
		}
		first = false
		last = start

		l.execute()

		deadline = deadline.Add(l.TargetPeriod())
		if now := time.Now(); now.Before(deadline) {
			l.sleep(deadline.Sub(now))
		} else {
			deadline = now
		}
	}

	l.logger.Debug("loop stopped", "loop", l.name, "iterations", l.iterations.Load())
	return nil
}

func (l *Loop) execute() {
	n := l.iterations.Add(1)
	defer func() {
		if r := recover(); r != nil {
			l.failures.Add(1)
			l.logger.Error("task panicked", "loop", l.name, "iteration", n, "panic", r)
		}
	}()

	if err := l.task(); err != nil {
		l.failures.Add(1)
		l.logger.Error("task failed", "loop", l.name, "iteration", n, "err", err)
	}
}

func (l *Loop) sleep(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-l.wake:
	}
}

// Stop asks the loop to return. The current iteration, if any, completes
// first; a pending sleep is cut short. A Stop issued before Run starts is
// ignored.
func (l *Loop) Stop() {
	l.running.Store(false)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

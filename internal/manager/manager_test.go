package manager_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nihilo/internal/control"
	"github.com/san-kum/nihilo/internal/loop"
	"github.com/san-kum/nihilo/internal/manager"
	"github.com/san-kum/nihilo/internal/sim"
)

type fakeControls struct {
	calls     atomic.Int64
	stopAfter int64
	empty     bool
}

func (c *fakeControls) Update() (*control.ControlSnapshot, bool) {
	n := c.calls.Add(1)
	stop := c.stopAfter > 0 && n >= c.stopAfter
	if c.empty {
		return nil, stop
	}
	return &control.ControlSnapshot{Width: 80, Height: 24, FOV: control.DefaultFOV}, stop
}

type fakeSimulation struct {
	age       atomic.Uint64
	published atomic.Int64
	failEvery uint64
	delay     time.Duration
}

var errStep = errors.New("step failed")

func (s *fakeSimulation) Update() error {
	time.Sleep(s.delay)
	age := s.age.Add(1)
	if s.failEvery > 0 && age%s.failEvery == 0 {
		return errStep
	}
	return nil
}

func (s *fakeSimulation) Snapshot() *sim.SimulationSnapshot {
	n := s.published.Add(1)
	return &sim.SimulationSnapshot{Age: s.age.Load(), Sequence: uint64(n)}
}

type fakeRenderer struct {
	mu       sync.Mutex
	calls    int
	changed  map[*sim.SimulationSnapshot]int
	last     *sim.SimulationSnapshot
	reused   int
	mismatch int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{changed: make(map[*sim.SimulationSnapshot]int)}
}

func (r *fakeRenderer) Render(ctrl *control.ControlSnapshot, snap *sim.SimulationSnapshot, changed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if changed {
		r.changed[snap]++
	} else {
		r.reused++
		if snap != r.last {
			r.mismatch++
		}
	}
	r.last = snap
	return nil
}

func (r *fakeRenderer) stats() (calls, reused, mismatch int, changed map[*sim.SimulationSnapshot]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := make(map[*sim.SimulationSnapshot]int, len(r.changed))
	for k, v := range r.changed {
		c[k] = v
	}
	return r.calls, r.reused, r.mismatch, c
}

func fast() []manager.Option {
	return []manager.Option{
		manager.WithControlFrequency(200),
		manager.WithSimulationFrequency(50),
		manager.WithRenderFrequency(200),
	}
}

func runAsync(m *manager.Manager, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	return done
}

var _ = Describe("Manager", func() {
	var (
		controls   *fakeControls
		simulation *fakeSimulation
		renderer   *fakeRenderer
	)

	BeforeEach(func() {
		controls = &fakeControls{}
		simulation = &fakeSimulation{}
		renderer = newFakeRenderer()
	})

	It("rejects invalid frequencies", func() {
		_, err := manager.New(controls, simulation, renderer, manager.WithRenderFrequency(0))
		Expect(err).To(MatchError(loop.ErrInvalidFrequency))

		_, err = manager.New(controls, simulation, renderer, manager.WithSimulationFrequency(-1))
		Expect(err).To(MatchError(loop.ErrInvalidFrequency))
	})

	It("reports target timings", func() {
		m, err := manager.New(controls, simulation, renderer, fast()...)
		Expect(err).NotTo(HaveOccurred())

		t := m.Timings()
		Expect(t.Control.TargetFrequency()).To(BeNumerically("~", 200, 1e-6))
		Expect(t.Simulation.TargetFrequency()).To(BeNumerically("~", 50, 1e-6))
		Expect(t.Render.TargetFrequency()).To(BeNumerically("~", 200, 1e-6))
	})

	It("stops when the controls ask to", func() {
		controls.stopAfter = 40
		m, err := manager.New(controls, simulation, renderer, fast()...)
		Expect(err).NotTo(HaveOccurred())

		done := runAsync(m, context.Background())
		Eventually(done, 5*time.Second).Should(Receive(BeNil()))

		Expect(m.Stopped()).To(BeTrue())
		Expect(controls.calls.Load()).To(BeNumerically(">=", 40))
		Expect(simulation.age.Load()).To(BeNumerically(">", 0))
		Expect(m.SimulationSnapshot()).NotTo(BeNil())
		Expect(m.ControlSnapshot()).NotTo(BeNil())

		calls, _, _, _ := renderer.stats()
		Expect(calls).To(BeNumerically(">", 0))
	})

	It("stops on Stop and on context cancellation", func() {
		m, err := manager.New(controls, simulation, renderer, fast()...)
		Expect(err).NotTo(HaveOccurred())
		done := runAsync(m, context.Background())
		Consistently(done, 100*time.Millisecond).ShouldNot(Receive())
		m.Stop()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))

		m, err = manager.New(controls, simulation, renderer, fast()...)
		Expect(err).NotTo(HaveOccurred())
		ctx, cancel := context.WithCancel(context.Background())
		done = runAsync(m, ctx)
		Consistently(done, 100*time.Millisecond).ShouldNot(Receive())
		cancel()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
	})

	It("returns promptly when stopped before running", func() {
		m, err := manager.New(controls, simulation, renderer, fast()...)
		Expect(err).NotTo(HaveOccurred())
		m.Stop()

		done := runAsync(m, context.Background())
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		Expect(simulation.age.Load()).To(BeZero())
	})

	It("reports changed at most once per published snapshot", func() {
		m, err := manager.New(controls, simulation, renderer, fast()...)
		Expect(err).NotTo(HaveOccurred())
		done := runAsync(m, context.Background())

		Eventually(func() int {
			_, reused, _, _ := renderer.stats()
			return reused
		}, 3*time.Second).Should(BeNumerically(">", 10))
		m.Stop()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))

		calls, reused, mismatch, changed := renderer.stats()
		Expect(mismatch).To(BeZero())
		Expect(len(changed)).To(BeNumerically("<=", simulation.published.Load()))
		Expect(len(changed) + reused).To(Equal(calls))
		for _, n := range changed {
			Expect(n).To(Equal(1))
		}
	})

	It("does not render before both snapshots exist", func() {
		controls.empty = true
		m, err := manager.New(controls, simulation, renderer, fast()...)
		Expect(err).NotTo(HaveOccurred())
		done := runAsync(m, context.Background())

		Eventually(simulation.published.Load, time.Second).Should(BeNumerically(">", 2))
		m.Stop()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))

		calls, _, _, _ := renderer.stats()
		Expect(calls).To(BeZero())
	})

	It("keeps rendering while the simulation is slow", func() {
		simulation.delay = 200 * time.Millisecond
		m, err := manager.New(controls, simulation, renderer, fast()...)
		Expect(err).NotTo(HaveOccurred())
		done := runAsync(m, context.Background())

		Eventually(simulation.published.Load, 2*time.Second).Should(BeNumerically(">=", 1))
		Eventually(func() int {
			calls, _, _, _ := renderer.stats()
			return calls
		}, 2*time.Second).Should(BeNumerically(">", 20))

		// rendering outpaces the 5 Hz effective simulation rate
		calls, _, _, changed := renderer.stats()
		Expect(calls).To(BeNumerically(">", len(changed)))

		m.Stop()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
	})

	It("keeps publishing when a step fails", func() {
		simulation.failEvery = 2
		m, err := manager.New(controls, simulation, renderer, fast()...)
		Expect(err).NotTo(HaveOccurred())
		done := runAsync(m, context.Background())

		Eventually(simulation.published.Load, 2*time.Second).Should(BeNumerically(">=", 6))
		Expect(m.SimulationSnapshot().Age).To(BeNumerically(">=", 5))

		m.Stop()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
	})
})

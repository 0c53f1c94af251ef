package sim

import (
	"errors"
	"math"
	"sync"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/integrators"
	"github.com/san-kum/nihilo/internal/physics"
)

const (
	earthMass = 5.97217e24
	moonMass  = 7.342e22
	moonOrbit = 384400e3
)

// earthMoon returns a circular Earth-Moon system in its barycentric frame.
func earthMoon() ([]dynamo.ParticleInfo, []dynamo.ParticleState) {
	total := earthMass + moonMass
	v := physics.CircularSpeed(physics.G*total, moonOrbit)

	infos := []dynamo.ParticleInfo{
		{Name: "Earth", Mass: earthMass, Radius: 0.1},
		{Name: "Moon", Mass: moonMass, Radius: 0.05},
	}
	states := []dynamo.ParticleState{
		{
			Position: dynamo.Vec3{-moonOrbit * moonMass / total, 0, 0},
			Velocity: dynamo.Vec3{0, -v * moonMass / total, 0},
		},
		{
			Position: dynamo.Vec3{moonOrbit * earthMass / total, 0, 0},
			Velocity: dynamo.Vec3{0, v * earthMass / total, 0},
		},
	}
	return infos, states
}

func cloud(n int) ([]dynamo.ParticleInfo, []dynamo.ParticleState) {
	infos := make([]dynamo.ParticleInfo, n)
	states := make([]dynamo.ParticleState, n)
	for i := range n {
		angle := float64(i) * 2 * math.Pi / float64(n)
		r := 1e9 * (1 + float64(i%7))
		infos[i] = dynamo.ParticleInfo{Name: "p", Mass: 1e24 * float64(1+i%3)}
		states[i] = dynamo.ParticleState{
			Position: dynamo.Vec3{r * math.Cos(angle), r * math.Sin(angle), float64(i%5) * 1e7},
			Velocity: dynamo.Vec3{-math.Sin(angle) * 1e3, math.Cos(angle) * 1e3, 0},
		}
	}
	return infos, states
}

func TestNewValidation(t *testing.T) {
	infos, states := earthMoon()

	tests := []struct {
		name   string
		infos  []dynamo.ParticleInfo
		states []dynamo.ParticleState
		opts   []Option
		err    error
	}{
		{"defaults", infos, states, nil, nil},
		{"mismatch", infos, states[:1], nil, dynamo.ErrDimensionMismatch},
		{"zero mass", []dynamo.ParticleInfo{{Name: "x"}}, states[:1], nil, dynamo.ErrParameterBounds},
		{"zero step", infos, states, []Option{WithTimeStep(0)}, dynamo.ErrParameterBounds},
		{"NaN step", infos, states, []Option{WithTimeStep(math.NaN())}, dynamo.ErrParameterBounds},
		{"negative softening", infos, states, []Option{WithSoftening(-1)}, dynamo.ErrParameterBounds},
		{"zero scale", infos, states, []Option{WithScale(0)}, dynamo.ErrParameterBounds},
		{"invalid state", infos[:1], []dynamo.ParticleState{{Position: dynamo.Vec3{math.NaN(), 0, 0}}}, nil, dynamo.ErrInvalidState},
		{
			"verlet relativist", infos, states,
			[]Option{WithIntegrator(integrators.NewVerlet()), WithMotion(physics.NewRelativist())},
			dynamo.ErrIncompatibleIntegrator,
		},
		{
			"rk4 relativist", infos, states,
			[]Option{WithIntegrator(integrators.NewRK4()), WithMotion(physics.NewRelativist())},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.infos, tt.states, tt.opts...)
			if tt.err == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if s == nil {
					t.Fatal("nil simulator")
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestFirstUpdateAppliesInitialState(t *testing.T) {
	g := NewWithT(t)
	infos, states := earthMoon()

	s, err := New(infos, states)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(s.Update()).To(Succeed())
	g.Expect(s.Age()).To(BeZero())
	for i := range states {
		g.Expect(s.State(i).Position).To(Equal(states[i].Position))
		g.Expect(s.State(i).Velocity).To(Equal(states[i].Velocity))
		g.Expect(s.State(i).Acceleration.Len()).To(BeNumerically(">", 0))
	}
}

func TestAgeParity(t *testing.T) {
	infos, states := earthMoon()
	s, err := New(infos, states)
	if err != nil {
		t.Fatal(err)
	}
	s.Update()

	for k := uint64(1); k <= 5; k++ {
		before := s.State(1)
		if err := s.Update(); err != nil {
			t.Fatal(err)
		}
		if s.Age() != k {
			t.Fatalf("age = %d, want %d", s.Age(), k)
		}
		p := &s.sim.Particles[1]
		if *p.Current(k) != s.State(1) {
			t.Errorf("age %d: current slot mismatch", k)
		}
		// the previous generation is left untouched by the step
		if *p.Current(k - 1) != before {
			t.Errorf("age %d: previous generation modified", k)
		}
	}
}

func TestResetFromAnotherGoroutine(t *testing.T) {
	infos, states := earthMoon()
	s, err := New(infos, states)
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		s.Update()
	}

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Reset()
		}()
	}
	wg.Wait()

	s.Update()
	if s.Age() != 0 {
		t.Fatalf("age after reset = %d", s.Age())
	}
	if s.State(0).Position != states[0].Position {
		t.Errorf("position not restored")
	}

	// a single reset request is consumed once
	s.Update()
	if s.Age() != 1 {
		t.Errorf("age = %d, want 1", s.Age())
	}
}

func TestSnapshot(t *testing.T) {
	g := NewWithT(t)
	infos, states := earthMoon()
	infos[1].Color.R = 0.5

	s, err := New(infos, states, WithScale(1e8))
	g.Expect(err).NotTo(HaveOccurred())
	s.Update()

	a := s.Snapshot()
	b := s.Snapshot()

	g.Expect(a).To(Equal(b))
	g.Expect(a).NotTo(BeIdenticalTo(b))
	g.Expect(a.Sequence).To(Equal(uint64(1)))
	g.Expect(a.Particles).To(HaveLen(2))
	g.Expect(a.Particles[1].Position[0]).To(BeNumerically("~", states[1].Position[0]/1e8, 1e-9))
	g.Expect(a.Particles[1].Radius).To(Equal(0.05))
	g.Expect(a.Particles[1].Color.R).To(Equal(0.5))

	s.Update()
	reused := &SimulationSnapshot{Particles: make([]ParticleSnapshot, 0, 8)}
	s.SnapshotInto(reused)
	g.Expect(reused.Age).To(Equal(uint64(1)))
	g.Expect(cap(reused.Particles)).To(Equal(8))
	g.Expect(reused.Sequence).To(Equal(b.Sequence + 1))

	// the version keeps counting across resets
	s.Reset()
	s.Update()
	after := s.Snapshot()
	g.Expect(after.Age).To(BeZero())
	g.Expect(after.Sequence).To(Equal(reused.Sequence + 1))
	g.Expect(after.Particles).To(Equal(a.Particles))

	// older snapshots are not touched by later steps
	g.Expect(a.Age).To(BeZero())
	g.Expect(a.Particles).To(Equal(b.Particles))
}

func TestParallelMatchesSerial(t *testing.T) {
	infos, states := cloud(64)

	serial, err := New(infos, states, WithWorkers(1), WithTimeStep(3600))
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := New(infos, states, WithWorkers(4), WithTimeStep(3600))
	if err != nil {
		t.Fatal(err)
	}

	for range 20 {
		serial.Update()
		parallel.Update()
	}

	for i := range infos {
		if serial.State(i) != parallel.State(i) {
			t.Fatalf("particle %d differs between serial and parallel runs", i)
		}
	}
}

func TestEarthMoonOrbit(t *testing.T) {
	g := NewWithT(t)
	infos, states := earthMoon()

	dt := 600.0
	s, err := New(infos, states, WithTimeStep(dt))
	g.Expect(err).NotTo(HaveOccurred())
	s.Update()

	e0 := s.Energy()
	period := physics.KeplerPeriod(physics.G*(earthMass+moonMass), moonOrbit)
	steps := int(math.Round(period / dt))
	for range steps {
		g.Expect(s.Update()).To(Succeed())
	}

	start := states[1].Position.Sub(states[0].Position)
	end := s.State(1).Position.Sub(s.State(0).Position)
	g.Expect(end.Sub(start).Len() / moonOrbit).To(BeNumerically("<", 0.01))

	// Partners are read one generation behind, so pair forces are not
	// exactly opposite within a step. Energy drifts slowly and momentum
	// oscillates around zero.
	g.Expect(math.Abs(s.Energy()-e0) / math.Abs(e0)).To(BeNumerically("<", 2e-3))
	moonMomentum := moonMass * states[1].Velocity.Len()
	g.Expect(s.Momentum().Len() / moonMomentum).To(BeNumerically("<", 1e-2))
	g.Expect(s.Elapsed()).To(BeNumerically("~", float64(steps)*dt))
}

// One Kepler period of the Moon with Verlet at an hour per step. The lagged
// partner positions cost about 1.3% of the orbit radius in phase and 3e-3 in
// energy at this step size.
func TestEarthMoonOrbitHourStep(t *testing.T) {
	g := NewWithT(t)
	infos, states := earthMoon()

	dt := 3600.0
	s, err := New(infos, states, WithIntegrator(integrators.NewVerlet()), WithTimeStep(dt))
	g.Expect(err).NotTo(HaveOccurred())
	s.Update()

	e0 := s.Energy()
	period := physics.KeplerPeriod(physics.G*(earthMass+moonMass), moonOrbit)
	steps := int(math.Round(period / dt))
	for range steps {
		g.Expect(s.Update()).To(Succeed())
	}

	start := states[1].Position.Sub(states[0].Position)
	end := s.State(1).Position.Sub(s.State(0).Position)
	g.Expect(end.Sub(start).Len() / moonOrbit).To(BeNumerically("<", 0.03))
	g.Expect(math.Abs(s.Energy()-e0) / math.Abs(e0)).To(BeNumerically("<", 6e-3))
}

func TestEarthMoonOrbitLongRun(t *testing.T) {
	g := NewWithT(t)
	infos, states := earthMoon()

	s, err := New(infos, states, WithTimeStep(600))
	g.Expect(err).NotTo(HaveOccurred())
	s.Update()

	e0 := s.Energy()
	for range 10000 {
		g.Expect(s.Update()).To(Succeed())
	}
	g.Expect(math.Abs(s.Energy()-e0) / math.Abs(e0)).To(BeNumerically("<", 0.01))
}

func TestNonFiniteStateReported(t *testing.T) {
	infos := []dynamo.ParticleInfo{{Name: "fast", Mass: 1}}
	states := []dynamo.ParticleState{{Velocity: dynamo.Vec3{2 * physics.C, 0, 0}}}

	s, err := New(infos, states,
		WithIntegrator(integrators.NewEuler()),
		WithMotion(physics.NewRelativist()),
	)
	if err != nil {
		t.Fatal(err)
	}
	s.Update()

	err = s.Update()
	var stepErr *dynamo.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Age != 1 || stepErr.Particle != 0 {
		t.Errorf("unexpected step error: %+v", stepErr)
	}
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState")
	}
}

type countingMetric struct {
	observed int
	resets   int
}

func (m *countingMetric) Name() string                 { return "count" }
func (m *countingMetric) Observe(_ *dynamo.Simulation) { m.observed++ }
func (m *countingMetric) Value() float64               { return float64(m.observed) }
func (m *countingMetric) Reset()                       { m.resets++ }

func TestMetricsObserveSteps(t *testing.T) {
	infos, states := earthMoon()
	s, err := New(infos, states)
	if err != nil {
		t.Fatal(err)
	}
	m := &countingMetric{}
	s.AddMetric(m)

	for range 4 {
		s.Update()
	}

	// the initial state plus three steps
	if m.observed != 4 {
		t.Errorf("observed %d states, want 4", m.observed)
	}
	if m.resets != 1 {
		t.Errorf("reset %d times, want 1", m.resets)
	}

	s.Reset()
	s.Update()
	if m.resets != 2 || m.observed != 5 {
		t.Errorf("after reset: %d resets, %d observations", m.resets, m.observed)
	}
}

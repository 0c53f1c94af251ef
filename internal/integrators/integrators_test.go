package integrators

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/nihilo/internal/dynamo"
)

func harmonic(s dynamo.ParticleState) dynamo.Vec3 {
	return s.Position.Mul(-1)
}

func drag(s dynamo.ParticleState) dynamo.Vec3 {
	return s.Velocity.Mul(-1)
}

func kepler(s dynamo.ParticleState) dynamo.Vec3 {
	r := s.Position.Len()
	return s.Position.Mul(-1 / (r * r * r))
}

func run(integ dynamo.Integrator, s dynamo.ParticleState, dt float64, steps int, acc dynamo.Accelerator) dynamo.ParticleState {
	s.Acceleration = acc(s)
	for i := 0; i < steps; i++ {
		s = integ.Advance(s, dt, acc)
	}
	return s
}

func oscillatorEnergy(s dynamo.ParticleState) float64 {
	return 0.5 * (s.Position.LenSqr() + s.Velocity.LenSqr())
}

func TestEulerSingleStep(t *testing.T) {
	g := NewWithT(t)

	current := dynamo.ParticleState{
		Position: dynamo.Vec3{1, 0, 0},
		Velocity: dynamo.Vec3{0, 1, 0},
	}
	next := NewEuler().Advance(current, 0.1, harmonic)

	g.Expect(next.Position).To(Equal(dynamo.Vec3{1, 0.1, 0}))
	g.Expect(next.Velocity).To(Equal(dynamo.Vec3{-0.1, 1, 0}))
	g.Expect(next.Acceleration).To(Equal(dynamo.Vec3{-1, 0, 0}))
}

func TestRK4Accuracy(t *testing.T) {
	dt := 0.01
	steps := 100
	x := run(NewRK4(), dynamo.ParticleState{Position: dynamo.Vec3{1, 0, 0}}, dt, steps, harmonic)

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x.Position[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x.Position[0], expectedX)
	}
	if math.Abs(x.Velocity[0]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x.Velocity[0], expectedV)
	}
}

func TestRK4VelocityDependent(t *testing.T) {
	// x'' = -x' with x(0) = 0, x'(0) = 1 gives x(t) = 1 - e^-t.
	x := run(NewRK4(), dynamo.ParticleState{Velocity: dynamo.Vec3{1, 0, 0}}, 0.01, 100, drag)

	if got, want := x.Position[0], 1-math.Exp(-1); math.Abs(got-want) > 1e-8 {
		t.Errorf("position = %.10f, want %.10f", got, want)
	}
	if got, want := x.Velocity[0], math.Exp(-1); math.Abs(got-want) > 1e-8 {
		t.Errorf("velocity = %.10f, want %.10f", got, want)
	}
}

func TestCircularOrbit(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"rk4", NewRK4(), 1e-6},
		{"verlet", NewVerlet(), 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := 1000
			dt := 2 * math.Pi / float64(steps)
			start := dynamo.ParticleState{
				Position: dynamo.Vec3{1, 0, 0},
				Velocity: dynamo.Vec3{0, 1, 0},
			}
			end := run(tt.integ, start, dt, steps, kepler)

			if d := end.Position.Sub(start.Position).Len(); d > tt.tol {
				t.Errorf("orbit did not close: distance %.3g > %.3g", d, tt.tol)
			}
			if r := end.Position.Len(); math.Abs(r-1) > tt.tol {
				t.Errorf("radius drifted to %.8f", r)
			}
		})
	}
}

func TestVerletEnergyBounded(t *testing.T) {
	s := dynamo.ParticleState{Position: dynamo.Vec3{1, 0, 0}, Velocity: dynamo.Vec3{0, 0.5, 0}}
	s.Acceleration = harmonic(s)
	e0 := oscillatorEnergy(s)

	integ := NewVerlet()
	maxDrift := 0.0
	for i := 0; i < 10000; i++ {
		s = integ.Advance(s, 0.01, harmonic)
		maxDrift = math.Max(maxDrift, math.Abs(oscillatorEnergy(s)-e0)/e0)
	}

	if maxDrift > 1e-3 {
		t.Errorf("energy drift %.3g exceeds 1e-3", maxDrift)
	}
}

func TestEulerEnergyGrows(t *testing.T) {
	s := dynamo.ParticleState{Position: dynamo.Vec3{1, 0, 0}}
	e0 := oscillatorEnergy(s)
	s = run(NewEuler(), s, 0.01, 1000, harmonic)

	if oscillatorEnergy(s) <= e0 {
		t.Errorf("expected explicit Euler to gain energy on an oscillator")
	}
}

func TestVelocityIndependence(t *testing.T) {
	tests := []struct {
		integ dynamo.Integrator
		want  bool
	}{
		{NewEuler(), false},
		{NewRK4(), false},
		{NewVerlet(), true},
	}
	for _, tt := range tests {
		if got := tt.integ.RequiresVelocityIndependence(); got != tt.want {
			t.Errorf("%s: RequiresVelocityIndependence() = %v, want %v", tt.integ.Name(), got, tt.want)
		}
	}
}

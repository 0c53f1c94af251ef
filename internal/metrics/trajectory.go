package metrics

import "github.com/san-kum/nihilo/internal/dynamo"

// Trajectory samples the position of one particle relative to another,
// once every stride observations. Value is the number of samples.
type Trajectory struct {
	name     string
	particle int
	origin   int
	stride   int
	samples  int
	points   []dynamo.Vec3
}

// NewTrajectory records particle relative to origin. Pass origin < 0 to
// record absolute positions.
func NewTrajectory(particle, origin, stride int) *Trajectory {
	return &Trajectory{
		name:     "trajectory",
		particle: particle,
		origin:   origin,
		stride:   max(stride, 1),
	}
}

func (t *Trajectory) Name() string { return t.name }

func (t *Trajectory) Observe(s *dynamo.Simulation) {
	defer func() { t.samples++ }()
	if t.samples%t.stride != 0 || t.particle >= len(s.Particles) {
		return
	}
	p := s.Particles[t.particle].Current(s.Age).Position
	if t.origin >= 0 && t.origin < len(s.Particles) {
		p = p.Sub(s.Particles[t.origin].Current(s.Age).Position)
	}
	t.points = append(t.points, p)
}

func (t *Trajectory) Value() float64 { return float64(len(t.points)) }

func (t *Trajectory) Points() []dynamo.Vec3 { return t.points }

// Axis returns one coordinate of every sample.
func (t *Trajectory) Axis(axis int) []float64 {
	out := make([]float64, len(t.points))
	for i, p := range t.points {
		out[i] = p[axis]
	}
	return out
}

func (t *Trajectory) Reset() {
	t.samples = 0
	t.points = t.points[:0]
}

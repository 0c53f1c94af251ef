package sim

import (
	"fmt"
	"sort"

	"github.com/san-kum/nihilo/internal/dynamo"
	"github.com/san-kum/nihilo/internal/integrators"
	"github.com/san-kum/nihilo/internal/physics"
)

// Registry maps names to integrator and motion factories.
type Registry struct {
	integrators map[string]func() dynamo.Integrator
	motions     map[string]func() dynamo.Motion
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		motions:     make(map[string]func() dynamo.Motion),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }

	r.motions["classic"] = func() dynamo.Motion { return physics.NewClassic() }
	r.motions["relativist"] = func() dynamo.Motion { return physics.NewRelativist() }

	return r
}

func (r *Registry) RegisterIntegrator(name string, fn func() dynamo.Integrator) {
	r.integrators[name] = fn
}

func (r *Registry) RegisterMotion(name string, fn func() dynamo.Motion) {
	r.motions[name] = fn
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: integrator %q", dynamo.ErrUnknownComponent, name)
	}
	return fn(), nil
}

func (r *Registry) GetMotion(name string) (dynamo.Motion, error) {
	fn, ok := r.motions[name]
	if !ok {
		return nil, fmt.Errorf("%w: motion %q", dynamo.ErrUnknownComponent, name)
	}
	return fn(), nil
}

// Options resolves both names into simulator options.
func (r *Registry) Options(integrator, motion string) ([]Option, error) {
	integ, err := r.GetIntegrator(integrator)
	if err != nil {
		return nil, err
	}
	m, err := r.GetMotion(motion)
	if err != nil {
		return nil, err
	}
	return []Option{WithIntegrator(integ), WithMotion(m)}, nil
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListMotions() []string {
	return sortedKeys(r.motions)
}

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

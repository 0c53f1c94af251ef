// Package integrators provides the time stepping schemes used by the simulator.
// Every integrator is stateless and safe for concurrent use.
package integrators

import "github.com/san-kum/nihilo/internal/dynamo"

var (
	_ dynamo.Integrator = (*Euler)(nil)
	_ dynamo.Integrator = (*RK4)(nil)
	_ dynamo.Integrator = (*Verlet)(nil)
)

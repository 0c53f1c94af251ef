package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates mismatched particle and state counts.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between particles and states")

	// ErrIncompatibleIntegrator indicates an integrator that requires a
	// velocity independent acceleration was paired with a velocity dependent
	// motion model.
	ErrIncompatibleIntegrator = errors.New("dynamo: integrator incompatible with motion model")

	// ErrUnknownComponent indicates a lookup of an unregistered integrator,
	// motion model or preset.
	ErrUnknownComponent = errors.New("dynamo: unknown component")
)

// StepError wraps an error with the simulation age at which it happened.
type StepError struct {
	Age      uint64
	Particle int
	Wrapped  error
}

func (e *StepError) Error() string {
	return e.Wrapped.Error()
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

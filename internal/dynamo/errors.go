package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a NaN or Inf component after a step.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrDimensionMismatch indicates a state whose length differs from the
	// system dimension.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// StepError wraps an integration failure with the time it occurred at.
type StepError struct {
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("t=%g: %v", e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/fmukit/internal/dynamo"
)

// New returns the integrator registered under name.
func New(name string) (dynamo.Integrator, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4", "":
		return NewRK4(), nil
	case "rk45":
		return NewRK45(), nil
	}
	return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownIntegrator, name)
}

// Names lists the integrators New accepts.
func Names() []string {
	return []string{"euler", "rk4", "rk45"}
}

// minStep bounds how far an adaptive integrator may shrink its step.
const minStep = 1e-12

// Advance integrates x from t over span. Fixed-step integrators use
// sub-steps of at most maxStep; adaptive ones start from maxStep and never
// exceed it.
func Advance(integ dynamo.Integrator, sys dynamo.System, t, span, maxStep, tol float64, x dynamo.State) error {
	if len(x) != sys.StateDim() {
		return &dynamo.StepError{Time: t, Wrapped: dynamo.ErrDimensionMismatch}
	}
	if span <= 0 {
		return nil
	}
	if maxStep <= 0 || maxStep > span {
		maxStep = span
	}
	end := t + span

	if a, ok := integ.(dynamo.Adaptive); ok {
		if tol <= 0 {
			tol = DefaultTolerance
		}
		h := maxStep
		slack := 1e-12 * math.Max(1, math.Abs(end))
		for end-t > slack {
			h = math.Min(h, end-t)
			accepted, next := a.StepAdaptive(sys, t, h, tol, x)
			if accepted {
				t += h
			} else if next < minStep {
				return &dynamo.StepError{Time: t, Wrapped: dynamo.ErrStepTooSmall}
			}
			h = math.Min(next, maxStep)
		}
	} else {
		steps := int(math.Ceil(span/maxStep - 1e-9))
		h := span / float64(steps)
		for i := 0; i < steps; i++ {
			integ.Step(sys, t+float64(i)*h, h, x)
		}
	}

	if !x.IsValid() {
		return &dynamo.StepError{Time: end, Wrapped: dynamo.ErrInvalidState}
	}
	return nil
}

package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is an ODE right-hand side. Derive writes f(t, x) into dx, which has
// the length of x.
type System interface {
	Derive(t float64, x, dx State)
	StateDim() int
}

// Hamiltonian systems expose their total energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Integrator advances x by h in place.
type Integrator interface {
	Name() string
	Step(sys System, t, h float64, x State)
}

// Adaptive integrators estimate their local error. StepAdaptive advances x
// only when the error is within tol and returns the step size to try next.
type Adaptive interface {
	Integrator
	StepAdaptive(sys System, t, h, tol float64, x State) (accepted bool, next float64)
}

package integrators

import "github.com/san-kum/fmukit/internal/dynamo"

type Euler struct {
	dx dynamo.State
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(sys dynamo.System, t, h float64, x dynamo.State) {
	if len(e.dx) != len(x) {
		e.dx = make(dynamo.State, len(x))
	}
	sys.Derive(t, x, e.dx)
	for i := range x {
		x[i] += h * e.dx[i]
	}
}

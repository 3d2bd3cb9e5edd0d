package physics

import (
	"math"

	"github.com/san-kum/fmukit/internal/dynamo"
)

// Pendulum is a damped rigid pendulum driven by an external torque.
// State is [theta, omega].
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
	Torque  float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: Gravity,
	}
}

func (p *Pendulum) StateDim() int {
	return 2
}

func (p *Pendulum) Derive(t float64, x, dx dynamo.State) {
	theta := x[0]
	omega := x[1]

	dx[0] = omega
	dx[1] = (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta) + p.Torque) / (p.Mass * p.Length * p.Length)
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	// KE = 0.5 * m * (L*omega)^2
	// PE = m * g * L * (1 - cos(theta))
	v := p.Length * x[1]
	ke := 0.5 * p.Mass * v * v
	pe := p.Mass * p.Gravity * p.Length * (1.0 - math.Cos(x[0]))
	return ke + pe
}

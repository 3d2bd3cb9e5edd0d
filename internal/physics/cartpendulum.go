package physics

import (
	"math"

	"github.com/san-kum/fmukit/internal/dynamo"
)

// Gravity is standard gravitational acceleration in m/s2.
const Gravity = 9.81

// CartPendulum is a point-mass pendulum hanging from a cart that slides
// freely on a horizontal track. State is [x, theta, v, omega].
type CartPendulum struct {
	Length   float64
	PoleMass float64
	CartMass float64

	// Approximate switches to the small-angle linearisation.
	Approximate bool
}

func NewCartPendulum() *CartPendulum {
	return &CartPendulum{
		Length:   0.5,
		PoleMass: 1.0,
		CartMass: 1.0,
	}
}

func (c *CartPendulum) StateDim() int {
	return 4
}

func (c *CartPendulum) Derive(t float64, x, dx dynamo.State) {
	dx[0] = x[2]
	dx[1] = x[3]
	dx[2] = c.CartAcceleration(x[1], x[3])
	dx[3] = c.AngularAcceleration(x[1], x[3])
}

func (c *CartPendulum) CartAcceleration(theta, omega float64) float64 {
	l, m, M := c.Length, c.PoleMass, c.CartMass
	if c.Approximate {
		return m * theta * (l*omega*omega + Gravity) / M
	}
	s, co := math.Sin(theta), math.Cos(theta)
	return m * s * (l*omega*omega + Gravity*co) / (M + m*s*s)
}

func (c *CartPendulum) AngularAcceleration(theta, omega float64) float64 {
	l, m, M := c.Length, c.PoleMass, c.CartMass
	if c.Approximate {
		return -(theta * (l*m*omega*omega + M*Gravity + Gravity*m)) / (l * M)
	}
	s, co := math.Sin(theta), math.Cos(theta)
	return -(s * (l*m*co*omega*omega + M*Gravity + Gravity*m)) / (l * (M + m*s*s))
}

// Energy returns the total mechanical energy, with the potential measured
// from the pendulum's lowest point.
func (c *CartPendulum) Energy(x dynamo.State) float64 {
	l, m, M := c.Length, c.PoleMass, c.CartMass
	theta, v, omega := x[1], x[2], x[3]

	// Bob velocity relative to ground.
	bx := v + l*omega*math.Cos(theta)
	by := l * omega * math.Sin(theta)
	ke := 0.5*M*v*v + 0.5*m*(bx*bx+by*by)
	pe := m * Gravity * l * (1 - math.Cos(theta))
	return ke + pe
}

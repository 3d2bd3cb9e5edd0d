package models

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/fmukit/internal/component"
	"github.com/san-kum/fmukit/internal/dynamo"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/modeldesc"
	"github.com/san-kum/fmukit/internal/physics"
	"github.com/san-kum/fmukit/internal/registry"
	"github.com/san-kum/fmukit/internal/units"
)

// CartPendulumDataFile is the resource read at the end of initialization.
// It holds one number: extra mass added to the cart.
const CartPendulumDataFile = "myData.txt"

// CartPendulum exposes physics.CartPendulum for model exchange. The host
// owns integration and reads the four derivatives through Derivatives.
type CartPendulum struct {
	c   *component.Component
	sys *physics.CartPendulum

	q        dynamo.State
	xdd      float64
	thetadd  float64
	filename string
}

func NewCartPendulum() *CartPendulum {
	return &CartPendulum{
		sys:      physics.NewCartPendulum(),
		q:        dynamo.State{0, math.Pi / 4, 0, 0},
		filename: CartPendulumDataFile,
	}
}

func (p *CartPendulum) Info() component.Info {
	return component.Info{
		ModelIdentifier: "cartpendulum",
		ModelName:       "cartpendulum",
		Description:     "Pendulum hanging from a free cart",
		ModelExchange:   true,
		LogCategories:   component.StandardLogCategories(),
		DebugCategories: component.StandardDebugCategories(),
		Experiment: modeldesc.Experiment{
			StartTime: 0,
			StopTime:  10,
			Tolerance: 1e-6,
		},
	}
}

func (p *CartPendulum) Configure(c *component.Component) error {
	p.c = c

	c.AddUnit(units.Unit{Name: "J", Kg: 1, M: 2, S: -2})

	state := func(name, unit, desc string) component.Declaration {
		return component.Declaration{
			Name: name, Unit: unit, Description: desc,
			Causality: fmi.Output, Initial: fmi.Exact,
		}
	}
	local := func(name, unit, desc string) component.Declaration {
		return component.Declaration{
			Name: name, Unit: unit, Description: desc,
			Initial: fmi.Calculated,
		}
	}
	param := func(name, unit, desc string) component.Declaration {
		return component.Declaration{
			Name: name, Unit: unit, Description: desc,
			Causality: fmi.Parameter, Variability: fmi.Fixed,
		}
	}

	err := declare(c, []variable{
		{registry.Ref(&p.sys.Length), param("len", "m", "pendulum length")},
		{registry.Ref(&p.sys.PoleMass), param("m", "kg", "pendulum mass")},
		{registry.Ref(&p.sys.CartMass), param("M", "kg", "cart mass")},
		{registry.Ref(&p.sys.Approximate), param("approximateOn", "1", "use approximated model")},
		{registry.Ref(&p.filename), param("filename", "", "resource file holding additional cart mass")},

		{registry.Ref(&p.q[0]), state("x", "m", "cart position")},
		{registry.Ref(&p.q[2]), local("der(x)", "m/s", "derivative of cart position")},
		{registry.Ref(&p.q[1]), state("theta", "rad", "pendulum angle")},
		{registry.Ref(&p.q[3]), local("der(theta)", "rad/s", "derivative of pendulum angle")},
		{registry.Ref(&p.q[2]), state("v", "m/s", "cart velocity")},
		{registry.Ref(&p.xdd), local("der(v)", "m/s2", "cart linear acceleration")},
		{registry.Ref(&p.q[3]), state("omg", "rad/s", "pendulum angular velocity")},
		{registry.Ref(&p.thetadd), local("der(omg)", "rad/s2", "pendulum angular acceleration")},

		{registry.Func(p.kineticEnergy, nil), component.Declaration{
			Name: "kineticEnergy", Unit: "J", Description: "pendulum kinetic energy",
			Causality: fmi.Output, Initial: fmi.Calculated,
		}},
	})
	if err != nil {
		return err
	}

	accel := []string{"theta", "omg", "len", "m", "M"}
	for _, d := range []struct {
		derivative, state string
		deps              []string
	}{
		{"der(x)", "x", []string{"v"}},
		{"der(theta)", "theta", []string{"omg"}},
		{"der(v)", "v", accel},
		{"der(omg)", "omg", accel},
	} {
		if err := c.DeclareStateDerivative(d.derivative, d.state, d.deps...); err != nil {
			return err
		}
	}

	err = dependsOn(c, []dependency{
		{"der(x)", []string{"v"}},
		{"der(theta)", []string{"omg"}},
		{"der(v)", accel},
		{"der(omg)", accel},
		{"kineticEnergy", []string{"omg", "len", "m"}},
	})
	if err != nil {
		return err
	}

	c.OnPostStep(p.updateAccelerations)
	c.Logf(fmi.OK, "logAll", "Resources directory location: %s.", c.ResourceDir())
	return nil
}

func (p *CartPendulum) kineticEnergy() float64 {
	inertia := p.sys.PoleMass * p.sys.Length * p.sys.Length / 3
	return 0.5 * inertia * p.q[3] * p.q[3]
}

func (p *CartPendulum) updateAccelerations() {
	p.xdd = p.sys.CartAcceleration(p.q[1], p.q[3])
	p.thetadd = p.sys.AngularAcceleration(p.q[1], p.q[3])
}

func (p *CartPendulum) EnterInitialization() fmi.Status {
	return fmi.OK
}

// ExitInitialization loads the additional cart mass from the resource
// directory. A missing or malformed file is fatal.
func (p *CartPendulum) ExitInitialization() fmi.Status {
	path := p.c.ResourcePath(p.filename)
	mass, err := readMass(path)
	if err != nil {
		p.c.Logf(fmi.Fatal, "logStatusFatal", "Unable to load required file %s: %v; check if 'resources' folder is set", path, err)
		return fmi.Fatal
	}
	p.sys.CartMass += mass
	p.updateAccelerations()
	p.c.Logf(fmi.OK, "logAll", "Loaded additional cart mass %g from %s.", mass, p.filename)
	return fmi.OK
}

func readMass(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("expected number in %s", path)
	}
	mass, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("expected number in %s: %w", path, err)
	}
	return mass, nil
}

func (p *CartPendulum) ContinuousStates(x []float64) fmi.Status {
	copy(x, p.q)
	return fmi.OK
}

func (p *CartPendulum) SetContinuousStates(x []float64) fmi.Status {
	copy(p.q, x)
	return fmi.OK
}

func (p *CartPendulum) Derivatives(dx []float64) fmi.Status {
	p.sys.Derive(p.c.Time(), p.q, dx)
	return fmi.OK
}

// Energy returns the total mechanical energy of the current state.
func (p *CartPendulum) Energy() float64 {
	return p.sys.Energy(p.q)
}

package models

import (
	"github.com/san-kum/fmukit/internal/component"
	"github.com/san-kum/fmukit/internal/dynamo"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/integrators"
	"github.com/san-kum/fmukit/internal/modeldesc"
	"github.com/san-kum/fmukit/internal/physics"
	"github.com/san-kum/fmukit/internal/registry"
	"github.com/san-kum/fmukit/internal/units"
)

// Pendulum exposes physics.Pendulum for co-simulation. Each communication
// step is integrated internally with the solver named by the "solver"
// parameter, in sub-steps no longer than maxStep.
type Pendulum struct {
	c   *component.Component
	sys *physics.Pendulum

	x       dynamo.State
	prev    dynamo.State
	solver  string
	maxStep float64
	integ   dynamo.Integrator
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		sys:     physics.NewPendulum(),
		x:       dynamo.State{0.5, 0},
		prev:    make(dynamo.State, 2),
		solver:  "rk4",
		maxStep: 1e-3,
	}
}

func (p *Pendulum) Info() component.Info {
	return component.Info{
		ModelIdentifier: "pendulum",
		ModelName:       "pendulum",
		Description:     "Damped pendulum driven by an external torque",
		CoSimulation:    true,
		LogCategories:   component.StandardLogCategories(),
		DebugCategories: component.StandardDebugCategories(),
		Experiment: modeldesc.Experiment{
			StartTime: 0,
			StopTime:  10,
			StepSize:  0.01,
			Tolerance: 1e-6,
		},
	}
}

func (p *Pendulum) Configure(c *component.Component) error {
	p.c = c

	c.AddUnit(units.Unit{Name: "J", Kg: 1, M: 2, S: -2})
	c.AddUnit(units.Unit{Name: "Nms/rad", Kg: 1, M: 2, S: -1, Rad: -1})

	param := func(name, unit, desc string, v fmi.Variability) component.Declaration {
		return component.Declaration{
			Name: name, Unit: unit, Description: desc,
			Causality: fmi.Parameter, Variability: v,
		}
	}
	output := func(name, unit, desc string, i fmi.Initial) component.Declaration {
		return component.Declaration{
			Name: name, Unit: unit, Description: desc,
			Causality: fmi.Output, Initial: i,
		}
	}

	err := declare(c, []variable{
		{registry.Ref(&p.sys.Mass), param("mass", "kg", "bob mass", fmi.Fixed)},
		{registry.Ref(&p.sys.Length), param("length", "m", "rod length", fmi.Fixed)},
		{registry.Ref(&p.sys.Damping), param("damping", "Nms/rad", "viscous damping", fmi.Tunable)},
		{registry.Ref(&p.sys.Gravity), param("g", "m/s2", "gravitational acceleration", fmi.Fixed)},
		{registry.Ref(&p.solver), param("solver", "", "integrator: euler, rk4 or rk45", fmi.Fixed)},
		{registry.Ref(&p.maxStep), param("maxStep", "s", "longest internal integration step", fmi.Tunable)},

		{registry.Ref(&p.sys.Torque), component.Declaration{
			Name: "torque", Unit: "Nm", Description: "applied torque",
			Causality: fmi.Input,
		}},

		{registry.Ref(&p.x[0]), output("theta", "rad", "pendulum angle", fmi.Exact)},
		{registry.Ref(&p.x[1]), output("omega", "rad/s", "angular velocity", fmi.Exact)},
		{registry.Func(p.energy, nil), output("energy", "J", "total mechanical energy", fmi.Calculated)},
	})
	if err != nil {
		return err
	}

	return dependsOn(c, []dependency{
		{"energy", []string{"theta", "omega", "mass", "length", "g"}},
	})
}

func (p *Pendulum) energy() float64 {
	return p.sys.Energy(p.x)
}

func (p *Pendulum) EnterInitialization() fmi.Status {
	return fmi.OK
}

// ExitInitialization resolves the solver, which may have been set during
// initialization.
func (p *Pendulum) ExitInitialization() fmi.Status {
	integ, err := integrators.New(p.solver)
	if err != nil {
		p.c.Logf(fmi.Error, "logStatusError", "%v", err)
		return fmi.Error
	}
	p.integ = integ
	return fmi.OK
}

// DoStep integrates over [t, t+h]. A failed integration leaves the state as
// it was before the step and reports Discard so the host can retry with a
// shorter step.
func (p *Pendulum) DoStep(t, h float64, _ bool) fmi.Status {
	if p.integ == nil {
		p.c.Log(fmi.Error, "logStatusError", "no solver selected")
		return fmi.Error
	}
	_, _, tol := p.c.Experiment()

	copy(p.prev, p.x)
	if err := integrators.Advance(p.integ, p.sys, t, h, p.maxStep, tol, p.x); err != nil {
		copy(p.x, p.prev)
		p.c.Logf(fmi.Discard, "logStatusDiscard", "step from %g rejected: %v", t, err)
		return fmi.Discard
	}
	return fmi.OK
}

package component

import (
	"fmt"

	"github.com/san-kum/fmukit/internal/fmi"
)

func (c *Component) GetReal(refs []fmi.ValueReference, out []float64) error {
	return c.vars.GetReal(refs, out)
}

func (c *Component) GetInteger(refs []fmi.ValueReference, out []int32) error {
	return c.vars.GetInteger(refs, out)
}

func (c *Component) GetBoolean(refs []fmi.ValueReference, out []bool) error {
	return c.vars.GetBoolean(refs, out)
}

func (c *Component) GetString(refs []fmi.ValueReference, out []string) error {
	return c.vars.GetString(refs, out)
}

func (c *Component) SetReal(refs []fmi.ValueReference, in []float64) error {
	return c.vars.SetReal(refs, in)
}

func (c *Component) SetInteger(refs []fmi.ValueReference, in []int32) error {
	return c.vars.SetInteger(refs, in)
}

func (c *Component) SetBoolean(refs []fmi.ValueReference, in []bool) error {
	return c.vars.SetBoolean(refs, in)
}

func (c *Component) SetString(refs []fmi.ValueReference, in []string) error {
	return c.vars.SetString(refs, in)
}

// SetupExperiment records the experiment requested by the host and moves
// the independent variable to the start time.
func (c *Component) SetupExperiment(toleranceDefined bool, tolerance, start float64, stopDefined bool, stop float64) {
	c.experiment.StartTime = start
	if toleranceDefined {
		c.experiment.Tolerance = tolerance
	}
	if stopDefined {
		c.experiment.StopTime = stop
	}
	c.time = start
}

// Experiment returns the experiment currently in effect.
func (c *Component) Experiment() (start, stop, tolerance float64) {
	return c.experiment.StartTime, c.experiment.StopTime, c.experiment.Tolerance
}

func (c *Component) EnterInitializationMode() (fmi.Status, error) {
	var hook func() fmi.Status
	if m, ok := c.model.(Initializer); ok {
		hook = m.EnterInitialization
	}
	return c.machine.EnterInitializationMode(hook)
}

func (c *Component) ExitInitializationMode() (fmi.Status, error) {
	var hook func() fmi.Status
	if m, ok := c.model.(Initializer); ok {
		hook = m.ExitInitialization
	}
	return c.machine.ExitInitializationMode(hook)
}

// DoStep advances a co-simulation instance from t by h. The independent
// variable is moved to t+h when the step is accepted.
func (c *Component) DoStep(t, h float64, noSetPrior bool) (fmi.Status, error) {
	if c.mode != fmi.CoSimulation {
		return fmi.Error, c.illegal("do step", "instance was created for %s", c.mode)
	}
	m, ok := c.model.(Stepper)
	if !ok {
		return fmi.Error, fmi.NewError(fmi.ErrUnsupportedMode, "do step", c.info.ModelIdentifier,
			"model does not implement stepping")
	}

	status, err := c.machine.Step(func() fmi.Status {
		c.time = t
		return m.DoStep(t, h, noSetPrior)
	})
	if err == nil && (status == fmi.OK || status == fmi.Warning) {
		c.time = t + h
	}
	return status, err
}

// SetTime moves the independent variable of a model-exchange instance.
func (c *Component) SetTime(t float64) fmi.Status {
	c.time = t
	if m, ok := c.model.(TimeSetter); ok {
		return m.SetTime(t)
	}
	return fmi.OK
}

func (c *Component) GetContinuousStates(x []float64) (fmi.Status, error) {
	m, err := c.continuous("get continuous states", x)
	if err != nil {
		return fmi.Error, err
	}
	return m.ContinuousStates(x), nil
}

func (c *Component) SetContinuousStates(x []float64) (fmi.Status, error) {
	m, err := c.continuous("set continuous states", x)
	if err != nil {
		return fmi.Error, err
	}
	return m.SetContinuousStates(x), nil
}

// GetDerivatives evaluates the state derivatives. The step callbacks run
// around the evaluation so dependent outputs stay current.
func (c *Component) GetDerivatives(dx []float64) (fmi.Status, error) {
	m, err := c.continuous("get derivatives", dx)
	if err != nil {
		return fmi.Error, err
	}
	c.machine.RunPreStep()
	status := m.Derivatives(dx)
	c.machine.RunPostStep()
	return status, nil
}

func (c *Component) NewDiscreteStates(info *fmi.EventInfo) fmi.Status {
	if m, ok := c.model.(EventUpdater); ok {
		return m.NewDiscreteStates(info)
	}
	*info = fmi.EventInfo{}
	return fmi.OK
}

func (c *Component) CompletedIntegratorStep(noSetPrior bool) (enterEventMode, terminate bool, status fmi.Status) {
	if m, ok := c.model.(IntegratorStepCompleter); ok {
		return m.CompletedIntegratorStep(noSetPrior)
	}
	return false, false, fmi.OK
}

// Terminate ends the simulation. The instance stays usable for reads.
func (c *Component) Terminate() fmi.Status {
	c.Log(fmi.OK, "logAll", "Terminated.")
	return fmi.OK
}

// Reset returns the lifecycle to instantiated. Variable values are left to
// the model.
func (c *Component) Reset() fmi.Status {
	c.machine.Reset()
	c.time = c.experiment.StartTime
	return fmi.OK
}

func (c *Component) continuous(op string, x []float64) (ContinuousStates, error) {
	if c.mode != fmi.ModelExchange {
		return nil, c.illegal(op, "instance was created for %s", c.mode)
	}
	m, ok := c.model.(ContinuousStates)
	if !ok {
		return nil, fmi.NewError(fmi.ErrUnsupportedMode, op, c.info.ModelIdentifier,
			"model has no continuous states")
	}
	if len(x) != c.NumStates() {
		return nil, c.illegal(op, "expected %d states, got %d", c.NumStates(), len(x))
	}
	return m, nil
}

func (c *Component) illegal(op, format string, args ...any) error {
	return fmi.NewError(fmi.ErrIllegalCall, op, c.name, fmt.Sprintf(format, args...))
}

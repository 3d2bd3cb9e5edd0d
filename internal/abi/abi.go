// Package abi exposes component instances through the flat, handle-based
// call surface of the FMI C API. Every function forwards to the instance;
// errors are reported through the instance logger and returned as
// fmi.Error.
package abi

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/fmukit/internal/component"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/logging"
)

// TypesPlatform is the value returned by GetTypesPlatform.
const TypesPlatform = "default"

// Handle identifies a live instance. The zero handle is never issued.
type Handle uint64

// Table owns the instances created from one model factory. It is safe for
// concurrent use by different instances; calls on one instance must still
// be serialized by the caller.
type Table struct {
	factory component.Factory

	mu        sync.Mutex
	next      Handle
	instances map[Handle]*component.Component
}

func New(factory component.Factory) *Table {
	return &Table{
		factory:   factory,
		instances: make(map[Handle]*component.Component),
	}
}

// Instantiate creates and configures a new instance. A failure is logged
// through logger and no handle is issued.
func (t *Table) Instantiate(name string, mode fmi.Mode, guid, resourceLocation string,
	logger logging.Callback, visible, loggingOn bool) (Handle, error) {
	if logger == nil {
		logger = logging.Zap(logging.Logger())
	}
	c, err := component.Instantiate(t.factory(), component.Options{
		InstanceName:     name,
		Mode:             mode,
		GUID:             guid,
		ResourceLocation: resourceLocation,
		Logger:           logger,
		Visible:          visible,
		LoggingOn:        loggingOn,
	})
	if err != nil {
		logger(name, fmi.Error, "logStatusError", err.Error())
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.instances[t.next] = c
	logging.Logger().Debug("instance created",
		zap.String("instance", name),
		zap.Uint64("handle", uint64(t.next)),
		zap.Stringer("mode", mode))
	return t.next, nil
}

// Component returns the instance behind h.
func (t *Table) Component(h Handle) (*component.Component, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.instances[h]
	return c, ok
}

// Len returns the number of live instances.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.instances)
}

func (t *Table) FreeInstance(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.instances, h)
}

// Info describes the model the table instantiates.
func (t *Table) Info() component.Info {
	return t.factory().Info()
}

// GetVersion returns the standard revision implemented by the model.
func (t *Table) GetVersion() string {
	return t.factory().Info().Standard.String()
}

func (t *Table) GetTypesPlatform() string { return TypesPlatform }

var errUnknownHandle = errors.New("abi: unknown instance handle")

// with runs fn on the instance behind h and converts a returned error into
// a logged Error status.
func (t *Table) with(h Handle, op string, fn func(c *component.Component) (fmi.Status, error)) fmi.Status {
	c, ok := t.Component(h)
	if !ok {
		logging.Logger().Warn("call on unknown handle", zap.String("op", op), zap.Uint64("handle", uint64(h)))
		return fmi.Error
	}
	status, err := fn(c)
	if err != nil {
		c.Log(fmi.Error, "logStatusError", fmt.Sprintf("%s: %v", op, err))
		if status == fmi.OK || status == fmi.Warning {
			status = fmi.Error
		}
	}
	return status
}

func ok(err error) (fmi.Status, error) {
	if err != nil {
		return fmi.Error, err
	}
	return fmi.OK, nil
}

// SetDebugLogging with no categories sets the global debug flag of the
// instance; otherwise it switches the named categories.
func (t *Table) SetDebugLogging(h Handle, loggingOn bool, categories ...string) fmi.Status {
	return t.with(h, "set debug logging", func(c *component.Component) (fmi.Status, error) {
		c.SetDebugLogging(loggingOn, categories...)
		return fmi.OK, nil
	})
}

func (t *Table) SetupExperiment(h Handle, toleranceDefined bool, tolerance, start float64, stopDefined bool, stop float64) fmi.Status {
	return t.with(h, "setup experiment", func(c *component.Component) (fmi.Status, error) {
		c.SetupExperiment(toleranceDefined, tolerance, start, stopDefined, stop)
		return fmi.OK, nil
	})
}

func (t *Table) EnterInitializationMode(h Handle) fmi.Status {
	return t.with(h, "enter initialization mode", func(c *component.Component) (fmi.Status, error) {
		return c.EnterInitializationMode()
	})
}

func (t *Table) ExitInitializationMode(h Handle) fmi.Status {
	return t.with(h, "exit initialization mode", func(c *component.Component) (fmi.Status, error) {
		return c.ExitInitializationMode()
	})
}

func (t *Table) Terminate(h Handle) fmi.Status {
	return t.with(h, "terminate", func(c *component.Component) (fmi.Status, error) {
		return c.Terminate(), nil
	})
}

func (t *Table) Reset(h Handle) fmi.Status {
	return t.with(h, "reset", func(c *component.Component) (fmi.Status, error) {
		return c.Reset(), nil
	})
}

func (t *Table) GetReal(h Handle, refs []fmi.ValueReference, out []float64) fmi.Status {
	return t.with(h, "get real", func(c *component.Component) (fmi.Status, error) {
		return ok(c.GetReal(refs, out))
	})
}

func (t *Table) GetInteger(h Handle, refs []fmi.ValueReference, out []int32) fmi.Status {
	return t.with(h, "get integer", func(c *component.Component) (fmi.Status, error) {
		return ok(c.GetInteger(refs, out))
	})
}

func (t *Table) GetBoolean(h Handle, refs []fmi.ValueReference, out []bool) fmi.Status {
	return t.with(h, "get boolean", func(c *component.Component) (fmi.Status, error) {
		return ok(c.GetBoolean(refs, out))
	})
}

func (t *Table) GetString(h Handle, refs []fmi.ValueReference, out []string) fmi.Status {
	return t.with(h, "get string", func(c *component.Component) (fmi.Status, error) {
		return ok(c.GetString(refs, out))
	})
}

func (t *Table) SetReal(h Handle, refs []fmi.ValueReference, in []float64) fmi.Status {
	return t.with(h, "set real", func(c *component.Component) (fmi.Status, error) {
		return ok(c.SetReal(refs, in))
	})
}

func (t *Table) SetInteger(h Handle, refs []fmi.ValueReference, in []int32) fmi.Status {
	return t.with(h, "set integer", func(c *component.Component) (fmi.Status, error) {
		return ok(c.SetInteger(refs, in))
	})
}

func (t *Table) SetBoolean(h Handle, refs []fmi.ValueReference, in []bool) fmi.Status {
	return t.with(h, "set boolean", func(c *component.Component) (fmi.Status, error) {
		return ok(c.SetBoolean(refs, in))
	})
}

func (t *Table) SetString(h Handle, refs []fmi.ValueReference, in []string) fmi.Status {
	return t.with(h, "set string", func(c *component.Component) (fmi.Status, error) {
		return ok(c.SetString(refs, in))
	})
}

func (t *Table) DoStep(h Handle, current, step float64, noSetPrior bool) fmi.Status {
	return t.with(h, "do step", func(c *component.Component) (fmi.Status, error) {
		return c.DoStep(current, step, noSetPrior)
	})
}

func (t *Table) SetTime(h Handle, time float64) fmi.Status {
	return t.with(h, "set time", func(c *component.Component) (fmi.Status, error) {
		return c.SetTime(time), nil
	})
}

func (t *Table) GetContinuousStates(h Handle, x []float64) fmi.Status {
	return t.with(h, "get continuous states", func(c *component.Component) (fmi.Status, error) {
		return c.GetContinuousStates(x)
	})
}

func (t *Table) SetContinuousStates(h Handle, x []float64) fmi.Status {
	return t.with(h, "set continuous states", func(c *component.Component) (fmi.Status, error) {
		return c.SetContinuousStates(x)
	})
}

func (t *Table) GetDerivatives(h Handle, dx []float64) fmi.Status {
	return t.with(h, "get derivatives", func(c *component.Component) (fmi.Status, error) {
		return c.GetDerivatives(dx)
	})
}

func (t *Table) NewDiscreteStates(h Handle, info *fmi.EventInfo) fmi.Status {
	return t.with(h, "new discrete states", func(c *component.Component) (fmi.Status, error) {
		return c.NewDiscreteStates(info), nil
	})
}

func (t *Table) CompletedIntegratorStep(h Handle, noSetPrior bool) (enterEventMode, terminate bool, status fmi.Status) {
	status = t.with(h, "completed integrator step", func(c *component.Component) (fmi.Status, error) {
		var s fmi.Status
		enterEventMode, terminate, s = c.CompletedIntegratorStep(noSetPrior)
		return s, nil
	})
	return enterEventMode, terminate, status
}

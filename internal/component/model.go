package component

import (
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/modeldesc"
)

// Info describes a model independently of any instance.
type Info struct {
	ModelIdentifier string
	ModelName       string
	GUID            string
	Description     string
	Standard        fmi.Standard

	CoSimulation  bool
	ModelExchange bool

	// LogCategories maps every category the model logs under to its
	// initial enabled flag.
	LogCategories   map[string]bool
	DebugCategories []string

	Experiment modeldesc.Experiment
}

// Model is implemented by every concrete component. Configure is called once
// per instance to declare units, variables, dependencies and callbacks.
type Model interface {
	Info() Info
	Configure(c *Component) error
}

// Factory returns a fresh, unconfigured model.
type Factory func() Model

// Initializer is implemented by models with work to do when entering or
// leaving initialization mode.
type Initializer interface {
	EnterInitialization() fmi.Status
	ExitInitialization() fmi.Status
}

// Stepper advances a co-simulation model by one communication step.
type Stepper interface {
	DoStep(t, h float64, noSetPrior bool) fmi.Status
}

// ContinuousStates is implemented by model-exchange models. Slices are sized
// to the number of declared state derivatives.
type ContinuousStates interface {
	ContinuousStates(x []float64) fmi.Status
	SetContinuousStates(x []float64) fmi.Status
	Derivatives(dx []float64) fmi.Status
}

// TimeSetter is notified after the independent variable changes.
type TimeSetter interface {
	SetTime(t float64) fmi.Status
}

type EventUpdater interface {
	NewDiscreteStates(info *fmi.EventInfo) fmi.Status
}

type IntegratorStepCompleter interface {
	CompletedIntegratorStep(noSetPrior bool) (enterEventMode, terminate bool, status fmi.Status)
}

// StandardLogCategories returns the usual category set with every category
// enabled.
func StandardLogCategories() map[string]bool {
	return map[string]bool{
		"logEvents":                true,
		"logSingularLinearSystems": true,
		"logNonlinearSystems":      true,
		"logStatusWarning":         true,
		"logStatusError":           true,
		"logStatusPending":         true,
		"logDynamicStateSelection": true,
		"logStatusDiscard":         true,
		"logStatusFatal":           true,
		"logAll":                   true,
	}
}

// StandardDebugCategories returns the categories of StandardLogCategories
// that only carry debug output.
func StandardDebugCategories() []string {
	return []string{
		"logStatusWarning",
		"logStatusDiscard",
		"logStatusError",
		"logStatusFatal",
		"logStatusPending",
	}
}

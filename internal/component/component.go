// Package component is the base every model is built on. A Component owns
// the variable registry, unit catalog, dependency graph and lifecycle
// machine of one instance, and forwards runtime calls to the model hooks.
package component

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/san-kum/fmukit/internal/depgraph"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/lifecycle"
	"github.com/san-kum/fmukit/internal/logging"
	"github.com/san-kum/fmukit/internal/modeldesc"
	"github.com/san-kum/fmukit/internal/registry"
	"github.com/san-kum/fmukit/internal/units"
)

// Options are the arguments of an instantiation request.
type Options struct {
	InstanceName     string
	Mode             fmi.Mode
	GUID             string
	ResourceLocation string
	Logger           logging.Callback
	Visible          bool
	LoggingOn        bool

	// Standard overrides the revision reported by the model when set.
	Standard *fmi.Standard
}

type Component struct {
	name  string
	info  Info
	mode  fmi.Mode
	model Model

	units   *units.Catalog
	vars    *registry.Registry
	graph   *depgraph.Graph
	machine *lifecycle.Machine

	logger       logging.Callback
	categories   map[string]bool
	debug        map[string]bool
	debugLogging bool
	visible      bool

	resources  string
	time       float64
	experiment modeldesc.Experiment
}

// Declaration is the metadata of a variable added through AddVariable.
type Declaration struct {
	Name        string
	Unit        string
	Description string
	Causality   fmi.Causality
	Variability fmi.Variability
	Initial     fmi.Initial
}

// DefaultGUID derives a stable GUID from a model identifier.
func DefaultGUID(identifier string) string {
	return "{" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("fmukit:"+identifier)).String() + "}"
}

// Instantiate builds and configures an instance of model. Any configuration
// error aborts the construction and no instance is returned.
func Instantiate(model Model, opts Options) (*Component, error) {
	info := model.Info()
	if info.ModelName == "" {
		info.ModelName = info.ModelIdentifier
	}
	if info.GUID == "" {
		info.GUID = DefaultGUID(info.ModelIdentifier)
	}
	if opts.Standard != nil {
		info.Standard = *opts.Standard
	}

	switch {
	case opts.Mode == fmi.CoSimulation && !info.CoSimulation,
		opts.Mode == fmi.ModelExchange && !info.ModelExchange:
		return nil, fmi.NewError(fmi.ErrUnsupportedMode, "instantiate", info.ModelIdentifier,
			fmt.Sprintf("%s is not available", opts.Mode))
	case opts.Mode != fmi.CoSimulation && opts.Mode != fmi.ModelExchange:
		return nil, fmi.NewError(fmi.ErrUnsupportedMode, "instantiate", info.ModelIdentifier,
			fmt.Sprintf("unrecognized mode %d", int(opts.Mode)))
	}

	c := &Component{
		name:         opts.InstanceName,
		info:         info,
		mode:         opts.Mode,
		model:        model,
		units:        units.New(),
		machine:      lifecycle.New(),
		logger:       opts.Logger,
		categories:   make(map[string]bool, len(info.LogCategories)),
		debug:        make(map[string]bool, len(info.DebugCategories)),
		debugLogging: opts.LoggingOn,
		visible:      opts.Visible,
		experiment:   info.Experiment,
	}
	if c.name == "" {
		c.name = info.ModelIdentifier
	}
	if c.logger == nil {
		c.logger = logging.Zap(logging.Logger())
	}
	c.vars = registry.New(c.units, info.Standard)
	c.graph = depgraph.New(c.vars)
	for name, enabled := range info.LogCategories {
		c.categories[name] = enabled
	}
	for _, name := range info.DebugCategories {
		c.debug[name] = true
	}

	if _, err := c.vars.Register(registry.Ref(&c.time), "time", fmi.Real, "s", "time",
		fmi.Independent, fmi.Continuous, fmi.InitialNone); err != nil {
		return nil, err
	}

	c.resources = c.resolveResources(opts.ResourceLocation)

	if opts.GUID != "" && opts.GUID != info.GUID {
		c.Log(fmi.Warning, "logStatusWarning", "GUID used for instantiation not matching with source.")
	}
	for _, name := range info.DebugCategories {
		if _, ok := info.LogCategories[name]; !ok {
			c.Logf(fmi.Warning, "logStatusWarning",
				"Log category %q specified to be of debug is not listed as a log category.", name)
		}
	}

	if err := model.Configure(c); err != nil {
		return nil, fmt.Errorf("configure %s: %w", info.ModelIdentifier, err)
	}
	return c, nil
}

func (c *Component) Name() string                 { return c.name }
func (c *Component) Mode() fmi.Mode               { return c.mode }
func (c *Component) Info() Info                   { return c.info }
func (c *Component) State() fmi.State             { return c.machine.State() }
func (c *Component) Time() float64                { return c.time }
func (c *Component) Visible() bool                { return c.visible }
func (c *Component) ResourceDir() string          { return c.resources }
func (c *Component) Registry() *registry.Registry { return c.vars }
func (c *Component) Catalog() *units.Catalog      { return c.units }

// AddUnit registers a unit definition, replacing one of the same name.
func (c *Component) AddUnit(u units.Unit) {
	c.units.Add(u)
}

// AddVariable registers a variable whose scalar type is taken from b.
func (c *Component) AddVariable(b registry.Binding, d Declaration) (*registry.Variable, error) {
	if b == nil {
		return nil, fmi.NewError(fmi.ErrTypeMismatch, "add variable", d.Name, "nil binding")
	}
	return c.vars.Register(b, d.Name, b.Type(), d.Unit, d.Description, d.Causality, d.Variability, d.Initial)
}

// RebindVariable points an existing variable at new storage.
func (c *Component) RebindVariable(name string, b registry.Binding) error {
	return c.vars.Rebind(name, b)
}

func (c *Component) DeclareStateDerivative(derivative, state string, deps ...string) error {
	return c.graph.DeclareStateDerivative(derivative, state, deps)
}

func (c *Component) DeclareVariableDependencies(variable string, deps ...string) error {
	return c.graph.DeclareVariableDependencies(variable, deps)
}

// NumStates is the length of the continuous-state vector.
func (c *Component) NumStates() int { return c.graph.NumStates() }

// OnPreStep registers a callback run before every step and derivative
// evaluation.
func (c *Component) OnPreStep(fn func()) { c.machine.OnPreStep(fn) }

// OnPostStep registers a callback run after every step and derivative
// evaluation, typically to refresh outputs.
func (c *Component) OnPostStep(fn func()) { c.machine.OnPostStep(fn) }

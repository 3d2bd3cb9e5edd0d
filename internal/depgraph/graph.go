package depgraph

import (
	"fmt"

	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/registry"
)

// Lookup reports whether a variable name is registered.
type Lookup interface {
	Has(name string) bool
}

// DerivativeRecord links a state variable to the variable holding its time
// derivative.
type DerivativeRecord struct {
	Derivative   string
	State        string
	Dependencies []string
}

// DependencyRecord lists the variables an initial unknown is computed from.
type DependencyRecord struct {
	Variable     string
	Dependencies []string
}

// Graph holds derivative and dependency declarations. Records are kept in
// declaration order, which is also the order of the continuous-state vector.
type Graph struct {
	vars Lookup

	derivatives []DerivativeRecord
	derivIndex  map[string]int

	dependencies []DependencyRecord
	depIndex     map[string]int
}

func New(vars Lookup) *Graph {
	return &Graph{
		vars:       vars,
		derivIndex: make(map[string]int),
		depIndex:   make(map[string]int),
	}
}

// DeclareStateDerivative records that derivative is the time derivative of
// state. Dependency names are stored as given and not checked.
func (g *Graph) DeclareStateDerivative(derivative, state string, deps []string) error {
	if !g.vars.Has(state) {
		return fmi.NewError(fmi.ErrUnknownVariable, "declare derivative", state, "state is not registered")
	}
	if !g.vars.Has(derivative) {
		return fmi.NewError(fmi.ErrUnknownVariable, "declare derivative", derivative, "derivative is not registered")
	}
	if prev, ok := g.derivIndex[derivative]; ok {
		return fmi.NewError(fmi.ErrDuplicateName, "declare derivative", derivative,
			fmt.Sprintf("already declared for state %q", g.derivatives[prev].State))
	}

	g.derivIndex[derivative] = len(g.derivatives)
	g.derivatives = append(g.derivatives, DerivativeRecord{
		Derivative:   derivative,
		State:        state,
		Dependencies: append([]string(nil), deps...),
	})
	return nil
}

// DeclareVariableDependencies appends deps to the record of variable,
// creating it on first use. Repeated names are kept.
func (g *Graph) DeclareVariableDependencies(variable string, deps []string) error {
	if !g.vars.Has(variable) {
		return fmi.NewError(fmi.ErrUnknownVariable, "declare dependencies", variable, "")
	}
	for _, d := range deps {
		if !g.vars.Has(d) {
			return fmi.NewError(fmi.ErrUnknownVariable, "declare dependencies", d,
				fmt.Sprintf("dependency of %q is not registered", variable))
		}
	}

	if i, ok := g.depIndex[variable]; ok {
		g.dependencies[i].Dependencies = append(g.dependencies[i].Dependencies, deps...)
		return nil
	}
	g.depIndex[variable] = len(g.dependencies)
	g.dependencies = append(g.dependencies, DependencyRecord{
		Variable:     variable,
		Dependencies: append([]string(nil), deps...),
	})
	return nil
}

// StateOf returns the state whose derivative is the named variable.
func (g *Graph) StateOf(derivative string) (string, bool) {
	i, ok := g.derivIndex[derivative]
	if !ok {
		return "", false
	}
	return g.derivatives[i].State, true
}

func (g *Graph) Derivatives() []DerivativeRecord {
	return g.derivatives
}

func (g *Graph) Dependencies() []DependencyRecord {
	return g.dependencies
}

func (g *Graph) DependenciesOf(name string) ([]string, bool) {
	i, ok := g.depIndex[name]
	if !ok {
		return nil, false
	}
	return g.dependencies[i].Dependencies, true
}

// NumStates is the length of the continuous-state vector.
func (g *Graph) NumStates() int { return len(g.derivatives) }

// Validate checks that every output with initial approx or calculated, and
// every calculated parameter, has a non-empty dependency record.
func (g *Graph) Validate(vars []*registry.Variable) error {
	for _, v := range vars {
		if !needsDependencies(v.Causality(), v.Initial()) {
			continue
		}
		if deps, ok := g.DependenciesOf(v.Name()); ok && len(deps) > 0 {
			continue
		}
		return fmi.NewError(fmi.ErrMissingDependency, "validate", v.Name(),
			fmt.Sprintf("%s variable with initial %q must declare dependencies", v.Causality(), v.Initial()))
	}
	return nil
}

func needsDependencies(c fmi.Causality, i fmi.Initial) bool {
	if c == fmi.CalculatedParameter {
		return true
	}
	return c == fmi.Output && (i == fmi.Approx || i == fmi.Calculated)
}

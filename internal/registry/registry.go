package registry

import (
	"fmt"
	"slices"
	"sort"

	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/units"
)

// Variable is one named, typed quantity exposed by a component.
type Variable struct {
	name        string
	typ         fmi.ScalarType
	unit        string
	description string
	causality   fmi.Causality
	variability fmi.Variability
	initial     fmi.Initial
	ref         fmi.ValueReference
	binding     Binding

	start         Value
	hasStart      bool
	startAllowed  bool
	startRequired bool
}

func (v *Variable) Name() string                  { return v.name }
func (v *Variable) Type() fmi.ScalarType          { return v.typ }
func (v *Variable) Unit() string                  { return v.unit }
func (v *Variable) Description() string           { return v.description }
func (v *Variable) Causality() fmi.Causality      { return v.causality }
func (v *Variable) Variability() fmi.Variability  { return v.variability }
func (v *Variable) Initial() fmi.Initial          { return v.initial }
func (v *Variable) Reference() fmi.ValueReference { return v.ref }
func (v *Variable) Binding() Binding              { return v.binding }
func (v *Variable) StartAllowed() bool            { return v.startAllowed }
func (v *Variable) StartRequired() bool           { return v.startRequired }

// Start returns the start value and whether one was set.
func (v *Variable) Start() (Value, bool) {
	return v.start, v.hasStart
}

// Current reads the present value through the binding.
func (v *Variable) Current() Value {
	return readValue(v.binding)
}

// startPolicy applies the schema rules in order: calculated or independent
// variables cannot carry a start value; exact, approx and inputs must.
func startPolicy(c fmi.Causality, i fmi.Initial) (allowed, required bool) {
	switch {
	case i == fmi.Calculated || c == fmi.Independent:
		return false, false
	case i == fmi.Exact || i == fmi.Approx || c == fmi.Input:
		return true, true
	default:
		return true, false
	}
}

type refKey struct {
	typ fmi.ScalarType
	ref fmi.ValueReference
}

// sharedScope is the counter key used when references are unique across types.
const sharedScope fmi.ScalarType = -1

// Registry is the catalog of variables of one component. It is not safe for
// concurrent use.
type Registry struct {
	units    *units.Catalog
	shared   bool
	counters map[fmi.ScalarType]fmi.ValueReference
	names    []string
	byName   map[string]*Variable
	byRef    map[refKey]*Variable
}

// New creates an empty registry resolving units against catalog. The
// standard decides whether reference ids are scoped per type (2.0) or
// shared by all types (3.0).
func New(catalog *units.Catalog, standard fmi.Standard) *Registry {
	return &Registry{
		units:    catalog,
		shared:   standard.SharedReferences(),
		counters: make(map[fmi.ScalarType]fmi.ValueReference),
		byName:   make(map[string]*Variable),
		byRef:    make(map[refKey]*Variable),
	}
}

// Register declares a new variable bound to b. The unit must be registered
// in the catalog or be a common unit, which is then registered. When the
// start policy requires a start value it is read from b immediately.
func (r *Registry) Register(b Binding, name string, typ fmi.ScalarType, unit, description string,
	causality fmi.Causality, variability fmi.Variability, initial fmi.Initial) (*Variable, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmi.NewError(fmi.ErrDuplicateName, "register", name, "")
	}
	if b == nil || !b.bound() {
		return nil, fmi.NewError(fmi.ErrTypeMismatch, "register", name, "binding has no storage")
	}
	if b.Type() != typ {
		return nil, fmi.NewError(fmi.ErrTypeMismatch, "register", name,
			fmt.Sprintf("declared %s, bound to %s storage", typ, b.Type()))
	}
	if _, err := r.units.Resolve(unit); err != nil {
		return nil, fmi.NewError(fmi.ErrUnknownUnit, "register", name, fmt.Sprintf("unit %q", unit))
	}

	scope := typ
	if r.shared {
		scope = sharedScope
	}
	r.counters[scope]++

	v := &Variable{
		name:        name,
		typ:         typ,
		unit:        unit,
		description: description,
		causality:   causality,
		variability: variability,
		initial:     initial,
		ref:         r.counters[scope],
		binding:     b,
	}
	v.startAllowed, v.startRequired = startPolicy(causality, initial)
	if v.startRequired {
		v.start = readValue(b)
		v.hasStart = true
	}

	i := sort.SearchStrings(r.names, name)
	r.names = slices.Insert(r.names, i, name)
	r.byName[name] = v
	r.byRef[refKey{typ, v.ref}] = v
	return v, nil
}

// Rebind replaces the storage of an existing variable. Every other
// attribute, including the start value captured at registration, is kept.
func (r *Registry) Rebind(name string, b Binding) error {
	v, ok := r.byName[name]
	if !ok {
		return fmi.NewError(fmi.ErrUnknownVariable, "rebind", name, "")
	}
	if b == nil || !b.bound() || b.Type() != v.typ {
		return fmi.NewError(fmi.ErrTypeMismatch, "rebind", name,
			fmt.Sprintf("variable is %s", v.typ))
	}
	v.binding = b
	return nil
}

// SetStart records an explicit start value. It is ignored for variables
// whose causality or initial forbid one.
func (r *Registry) SetStart(name string, value Value) error {
	v, ok := r.byName[name]
	if !ok {
		return fmi.NewError(fmi.ErrUnknownVariable, "set start", name, "")
	}
	if value.Type() != v.typ {
		return fmi.NewError(fmi.ErrTypeMismatch, "set start", name,
			fmt.Sprintf("variable is %s, value is %s", v.typ, value.Type()))
	}
	if !v.startAllowed {
		return nil
	}
	v.start = value
	v.hasStart = true
	return nil
}

func (r *Registry) FindByName(name string) (*Variable, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// Has reports whether a variable called name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

func (r *Registry) Lookup(typ fmi.ScalarType, ref fmi.ValueReference) (*Variable, bool) {
	v, ok := r.byRef[refKey{typ, ref}]
	return v, ok
}

// All returns the variables ordered by name.
func (r *Registry) All() []*Variable {
	out := make([]*Variable, len(r.names))
	for i, name := range r.names {
		out[i] = r.byName[name]
	}
	return out
}

func (r *Registry) Len() int { return len(r.names) }

func (r *Registry) GetReal(refs []fmi.ValueReference, out []float64) error {
	return get(r, refs, out)
}

func (r *Registry) GetInteger(refs []fmi.ValueReference, out []int32) error {
	return get(r, refs, out)
}

func (r *Registry) GetBoolean(refs []fmi.ValueReference, out []bool) error {
	return get(r, refs, out)
}

func (r *Registry) GetString(refs []fmi.ValueReference, out []string) error {
	return get(r, refs, out)
}

func (r *Registry) SetReal(refs []fmi.ValueReference, in []float64) error {
	return set(r, refs, in)
}

func (r *Registry) SetInteger(refs []fmi.ValueReference, in []int32) error {
	return set(r, refs, in)
}

func (r *Registry) SetBoolean(refs []fmi.ValueReference, in []bool) error {
	return set(r, refs, in)
}

func (r *Registry) SetString(refs []fmi.ValueReference, in []string) error {
	return set(r, refs, in)
}

func get[T Scalar](r *Registry, refs []fmi.ValueReference, out []T) error {
	typ := typeOf[T]()
	if len(out) < len(refs) {
		return fmi.NewError(fmi.ErrIllegalCall, "get", typ.String(),
			fmt.Sprintf("%d references but room for %d values", len(refs), len(out)))
	}
	for i, vr := range refs {
		v, ok := r.byRef[refKey{typ, vr}]
		if !ok {
			return fmi.NewError(fmi.ErrUnknownReference, "get", typ.String(), fmt.Sprintf("value reference %d", vr))
		}
		out[i], _ = load[T](v.binding)
	}
	return nil
}

// set writes in order; entries before a failing reference stay written.
func set[T Scalar](r *Registry, refs []fmi.ValueReference, in []T) error {
	typ := typeOf[T]()
	if len(in) < len(refs) {
		return fmi.NewError(fmi.ErrIllegalCall, "set", typ.String(),
			fmt.Sprintf("%d references but only %d values", len(refs), len(in)))
	}
	for i, vr := range refs {
		v, ok := r.byRef[refKey{typ, vr}]
		if !ok {
			return fmi.NewError(fmi.ErrUnknownReference, "set", typ.String(), fmt.Sprintf("value reference %d", vr))
		}
		store(v.binding, in[i])
	}
	return nil
}

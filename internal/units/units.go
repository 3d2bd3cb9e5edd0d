// Package units keeps the catalog of physical units a component may
// reference, each decomposed into SI base-unit exponents.
package units

import (
	"sort"

	"github.com/san-kum/fmukit/internal/fmi"
)

// Unit is a named combination of base-unit exponents.
type Unit struct {
	Name string
	Kg   int
	M    int
	S    int
	A    int
	K    int
	Mol  int
	Cd   int
	Rad  int
}

// Exponent is one non-zero base-unit exponent, named as in the schema.
type Exponent struct {
	Base  string
	Value int
}

// Exponents returns the non-zero exponents in schema order.
func (u Unit) Exponents() []Exponent {
	all := []Exponent{
		{"kg", u.Kg}, {"m", u.M}, {"s", u.S}, {"A", u.A},
		{"K", u.K}, {"mol", u.Mol}, {"cd", u.Cd}, {"rad", u.Rad},
	}
	out := all[:0]
	for _, e := range all {
		if e.Value != 0 {
			out = append(out, e)
		}
	}
	return out
}

var common = map[string]Unit{
	"kg":     {Name: "kg", Kg: 1},
	"m":      {Name: "m", M: 1},
	"s":      {Name: "s", S: 1},
	"A":      {Name: "A", A: 1},
	"K":      {Name: "K", K: 1},
	"mol":    {Name: "mol", Mol: 1},
	"cd":     {Name: "cd", Cd: 1},
	"rad":    {Name: "rad", Rad: 1},
	"m/s":    {Name: "m/s", M: 1, S: -1},
	"m/s2":   {Name: "m/s2", M: 1, S: -2},
	"rad/s":  {Name: "rad/s", Rad: 1, S: -1},
	"rad/s2": {Name: "rad/s2", Rad: 1, S: -2},
	"N":      {Name: "N", Kg: 1, M: 1, S: -2},
	"Nm":     {Name: "Nm", Kg: 1, M: 2, S: -2},
	"N/m2":   {Name: "N/m2", Kg: 1, M: -1, S: -2},
}

// Common looks a name up in the table of well-known units.
func Common(name string) (Unit, bool) {
	u, ok := common[name]
	return u, ok
}

// Catalog is the set of units registered on one component.
type Catalog struct {
	units map[string]Unit
}

// New returns a catalog holding the unassigned ("") and dimensionless ("1")
// units.
func New() *Catalog {
	c := &Catalog{units: make(map[string]Unit)}
	c.units[""] = Unit{Name: ""}
	c.units["1"] = Unit{Name: "1"}
	return c
}

// Add registers u, replacing any unit of the same name.
func (c *Catalog) Add(u Unit) {
	c.units[u.Name] = u
}

func (c *Catalog) Lookup(name string) (Unit, bool) {
	u, ok := c.units[name]
	return u, ok
}

// Resolve returns the registered unit called name. Names found only in the
// common table are registered as a side effect.
func (c *Catalog) Resolve(name string) (Unit, error) {
	if u, ok := c.units[name]; ok {
		return u, nil
	}
	u, ok := common[name]
	if !ok {
		return Unit{}, fmi.NewError(fmi.ErrUnknownUnit, "resolve unit", name,
			"register it with the unit catalog first")
	}
	c.units[name] = u
	return u, nil
}

// All returns the registered units ordered by name.
func (c *Catalog) All() []Unit {
	out := make([]Unit, 0, len(c.units))
	for _, u := range c.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Len() int { return len(c.units) }

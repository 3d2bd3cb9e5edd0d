package fmi

import "fmt"

// ValueReference is the per-type handle used by get/set calls.
type ValueReference = uint32

type ScalarType int

const (
	Real ScalarType = iota
	Integer
	Boolean
	String
)

var scalarTypeNames = [...]string{"Real", "Integer", "Boolean", "String"}

func (t ScalarType) String() string {
	if t < 0 || int(t) >= len(scalarTypeNames) {
		return fmt.Sprintf("ScalarType(%d)", int(t))
	}
	return scalarTypeNames[t]
}

type Causality int

const (
	Local Causality = iota
	Parameter
	CalculatedParameter
	Input
	Output
	Independent
)

var causalityNames = [...]string{"local", "parameter", "calculatedParameter", "input", "output", "independent"}

func (c Causality) String() string {
	if c < 0 || int(c) >= len(causalityNames) {
		return fmt.Sprintf("Causality(%d)", int(c))
	}
	return causalityNames[c]
}

// IsDefault reports whether the schema lets the attribute be omitted.
func (c Causality) IsDefault() bool { return c == Local }

type Variability int

const (
	Continuous Variability = iota
	Constant
	Fixed
	Tunable
	Discrete
)

var variabilityNames = [...]string{"continuous", "constant", "fixed", "tunable", "discrete"}

func (v Variability) String() string {
	if v < 0 || int(v) >= len(variabilityNames) {
		return fmt.Sprintf("Variability(%d)", int(v))
	}
	return variabilityNames[v]
}

func (v Variability) IsDefault() bool { return v == Continuous }

type Initial int

const (
	InitialNone Initial = iota
	Exact
	Approx
	Calculated
)

var initialNames = [...]string{"", "exact", "approx", "calculated"}

func (i Initial) String() string {
	if i < 0 || int(i) >= len(initialNames) {
		return fmt.Sprintf("Initial(%d)", int(i))
	}
	return initialNames[i]
}

func (i Initial) IsDefault() bool { return i == InitialNone }

// Mode selects which half of the standard an instance is created for.
type Mode int

const (
	CoSimulation Mode = iota
	ModelExchange
)

func (m Mode) String() string {
	switch m {
	case CoSimulation:
		return "CoSimulation"
	case ModelExchange:
		return "ModelExchange"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Standard is the revision of the FMI standard a component targets.
type Standard int

const (
	FMI2 Standard = iota
	FMI3
)

func (s Standard) String() string {
	switch s {
	case FMI2:
		return "2.0"
	case FMI3:
		return "3.0"
	default:
		return fmt.Sprintf("Standard(%d)", int(s))
	}
}

// SharedReferences reports whether value references are unique across all
// scalar types (3.0) rather than within each type (2.0).
func (s Standard) SharedReferences() bool { return s == FMI3 }

func ParseCausality(s string) (Causality, error) {
	for i, name := range causalityNames {
		if name == s {
			return Causality(i), nil
		}
	}
	return Local, fmt.Errorf("fmi: unknown causality %q", s)
}

func ParseVariability(s string) (Variability, error) {
	for i, name := range variabilityNames {
		if name == s {
			return Variability(i), nil
		}
	}
	return Continuous, fmt.Errorf("fmi: unknown variability %q", s)
}

func ParseInitial(s string) (Initial, error) {
	if s == "none" {
		return InitialNone, nil
	}
	for i, name := range initialNames {
		if name == s {
			return Initial(i), nil
		}
	}
	return InitialNone, fmt.Errorf("fmi: unknown initial %q", s)
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "CoSimulation", "cs", "cosim":
		return CoSimulation, nil
	case "ModelExchange", "me", "modex":
		return ModelExchange, nil
	}
	return CoSimulation, fmt.Errorf("fmi: unknown mode %q", s)
}

func ParseStandard(s string) (Standard, error) {
	switch s {
	case "2", "2.0", "fmi2":
		return FMI2, nil
	case "3", "3.0", "fmi3":
		return FMI3, nil
	}
	return FMI2, fmt.Errorf("fmi: unknown standard %q", s)
}

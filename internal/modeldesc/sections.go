package modeldesc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/registry"
)

func writeUnits(e *encoder, m *model) {
	e.start("UnitDefinitions", nil)
	for _, u := range m.units {
		var a attrs
		a.add("name", u.Name)
		e.start("Unit", a)

		var base attrs
		for _, x := range u.Exponents() {
			base.addInt(x.Base, x.Value)
		}
		e.leaf("BaseUnit", base)
		e.end("Unit")
	}
	e.end("UnitDefinitions")
}

func writeLogCategories(e *encoder, m *model) {
	names := make([]string, 0, len(m.debug))
	for name := range m.debug {
		names = append(names, name)
	}
	slices.Sort(names)

	e.start("LogCategories", nil)
	for _, name := range names {
		var a attrs
		a.add("name", name)
		if m.debug[name] {
			a.add("description", "DebugCategory")
		} else {
			a.add("description", "NotDebugCategory")
		}
		e.leaf("Category", a)
	}
	e.end("LogCategories")
}

func writeDefaultExperiment(e *encoder, m *model) {
	x := m.header.Experiment
	var a attrs
	a.add("startTime", formatFloat(x.StartTime))
	a.add("stopTime", formatFloat(x.StopTime))
	if x.StepSize > 0 {
		a.add("stepSize", formatFloat(x.StepSize))
	}
	if x.Tolerance > 0 {
		a.add("tolerance", formatFloat(x.Tolerance))
	}
	e.leaf("DefaultExperiment", a)
}

// variableAttrs holds the attributes shared by both dialects; defaults are
// left out.
func variableAttrs(v *registry.Variable) attrs {
	var a attrs
	a.add("name", v.Name())
	a.add("valueReference", fmt.Sprint(v.Reference()))
	if v.Description() != "" {
		a.add("description", v.Description())
	}
	if !v.Causality().IsDefault() {
		a.add("causality", v.Causality().String())
	}
	if !v.Variability().IsDefault() {
		a.add("variability", v.Variability().String())
	}
	if !v.Initial().IsDefault() {
		a.add("initial", v.Initial().String())
	}
	return a
}

func hasUnit(v *registry.Variable) bool {
	return v.Type() == fmi.Real && v.Unit() != ""
}

func joinRefs(names []string, ref func(string) string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = ref(n)
	}
	return strings.Join(parts, " ")
}

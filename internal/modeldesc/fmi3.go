package modeldesc

import (
	"fmt"

	"github.com/san-kum/fmukit/internal/fmi"
)

var fmi3Types = map[fmi.ScalarType]string{
	fmi.Real:    "Float64",
	fmi.Integer: "Int32",
	fmi.Boolean: "Boolean",
	fmi.String:  "String",
}

func writeFMI3(e *encoder, m *model) {
	h := m.header

	var root attrs
	root.add("fmiVersion", h.Standard.String())
	root.add("modelName", h.ModelName)
	root.add("instantiationToken", h.GUID)
	if h.Description != "" {
		root.add("description", h.Description)
	}
	root.add("generationTool", h.GenerationTool)
	root.add("variableNamingConvention", "structured")
	e.start("fmiModelDescription", root)

	if h.ModelExchange {
		var a attrs
		a.add("modelIdentifier", h.ModelIdentifier)
		a.addBool("needsExecutionTool", false)
		a.addBool("canBeInstantiatedOnlyOncePerProcess", false)
		a.addBool("canGetAndSetFMUState", false)
		a.addBool("canSerializeFMUState", false)
		a.addBool("providesDirectionalDerivatives", false)
		a.addBool("needsCompletedIntegratorStep", true)
		e.leaf("ModelExchange", a)
	}
	if h.CoSimulation {
		var a attrs
		a.add("modelIdentifier", h.ModelIdentifier)
		a.addBool("canHandleVariableCommunicationStepSize", true)
		a.addInt("maxOutputDerivativeOrder", 1)
		a.addBool("canGetAndSetFMUState", false)
		a.addBool("canSerializeFMUState", false)
		a.addBool("providesDirectionalDerivatives", false)
		e.leaf("CoSimulation", a)
	}

	writeUnits(e, m)
	writeLogCategories(e, m)
	writeDefaultExperiment(e, m)

	ref := func(name string) string { return fmt.Sprint(m.byName[name].Reference()) }

	e.start("ModelVariables", nil)
	for i, v := range m.vars {
		e.comment(fmt.Sprintf("Index: %d", i+1))

		a := variableAttrs(v)
		if hasUnit(v) {
			a.add("unit", v.Unit())
		}
		start, hasStart := v.Start()
		if hasStart && v.Type() != fmi.String {
			a.add("start", start.String())
		}
		if state, ok := m.stateOf[v.Name()]; ok {
			a.add("derivative", ref(state))
		}

		name := fmi3Types[v.Type()]
		e.start(name, a)
		if hasStart && v.Type() == fmi.String {
			var s attrs
			s.add("value", start.String())
			e.leaf("Start", s)
		}
		e.end(name)
	}
	e.end("ModelVariables")

	e.start("ModelStructure", nil)
	for _, v := range m.outputs {
		var a attrs
		a.add("valueReference", ref(v.Name()))
		e.leaf("Output", a)
	}
	for _, d := range m.derivatives {
		var a attrs
		a.add("valueReference", ref(d.Derivative))
		a.add("dependencies", joinRefs(d.Dependencies, ref))
		e.leaf("ContinuousStateDerivative", a)
	}
	for _, d := range m.unknowns {
		var a attrs
		a.add("valueReference", ref(d.Variable))
		a.add("dependencies", joinRefs(d.Dependencies, ref))
		e.leaf("InitialUnknown", a)
	}
	e.end("ModelStructure")

	e.end("fmiModelDescription")
}

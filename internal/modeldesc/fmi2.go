package modeldesc

import (
	"fmt"
	"strconv"
)

func writeFMI2(e *encoder, m *model) {
	h := m.header

	var root attrs
	root.add("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	root.add("fmiVersion", h.Standard.String())
	root.add("modelName", h.ModelName)
	root.add("guid", h.GUID)
	if h.Description != "" {
		root.add("description", h.Description)
	}
	root.add("generationTool", h.GenerationTool)
	root.add("variableNamingConvention", "structured")
	root.add("numberOfEventIndicators", "0")
	e.start("fmiModelDescription", root)

	if h.ModelExchange {
		var a attrs
		a.add("modelIdentifier", h.ModelIdentifier)
		a.addBool("needsExecutionTool", false)
		a.addBool("completedIntegratorStepNotNeeded", false)
		a.addBool("canBeInstantiatedOnlyOncePerProcess", false)
		a.addBool("canNotUseMemoryManagementFunctions", false)
		a.addBool("canGetAndSetFMUstate", false)
		a.addBool("canSerializeFMUstate", false)
		a.addBool("providesDirectionalDerivative", false)
		e.leaf("ModelExchange", a)
	}
	if h.CoSimulation {
		var a attrs
		a.add("modelIdentifier", h.ModelIdentifier)
		a.addBool("canHandleVariableCommunicationStepSize", true)
		a.addBool("canInterpolateInputs", true)
		a.addInt("maxOutputDerivativeOrder", 1)
		a.addBool("canGetAndSetFMUstate", false)
		a.addBool("canSerializeFMUstate", false)
		a.addBool("providesDirectionalDerivative", false)
		e.leaf("CoSimulation", a)
	}

	writeUnits(e, m)
	writeLogCategories(e, m)
	writeDefaultExperiment(e, m)

	index := func(name string) string { return strconv.Itoa(m.index[name]) }

	e.start("ModelVariables", nil)
	for i, v := range m.vars {
		e.comment(fmt.Sprintf("Index: %d", i+1))
		e.start("ScalarVariable", variableAttrs(v))

		var typed attrs
		if hasUnit(v) {
			typed.add("unit", v.Unit())
		}
		if start, ok := v.Start(); ok {
			typed.add("start", start.String())
		}
		if state, ok := m.stateOf[v.Name()]; ok {
			typed.add("derivative", index(state))
		}
		e.leaf(v.Type().String(), typed)
		e.end("ScalarVariable")
	}
	e.end("ModelVariables")

	e.start("ModelStructure", nil)
	if len(m.outputs) > 0 {
		e.start("Outputs", nil)
		for _, v := range m.outputs {
			var a attrs
			a.add("index", index(v.Name()))
			e.leaf("Unknown", a)
		}
		e.end("Outputs")
	}
	if len(m.derivatives) > 0 {
		e.start("Derivatives", nil)
		for _, d := range m.derivatives {
			var a attrs
			a.add("index", index(d.Derivative))
			a.add("dependencies", joinRefs(d.Dependencies, index))
			e.leaf("Unknown", a)
		}
		e.end("Derivatives")
	}
	if len(m.unknowns) > 0 {
		e.start("InitialUnknowns", nil)
		for _, d := range m.unknowns {
			var a attrs
			a.add("index", index(d.Variable))
			a.add("dependencies", joinRefs(d.Dependencies, index))
			e.leaf("Unknown", a)
		}
		e.end("InitialUnknowns")
	}
	e.end("ModelStructure")

	e.end("fmiModelDescription")
}

package modeldesc

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/fmukit/internal/depgraph"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/registry"
	"github.com/san-kum/fmukit/internal/units"
)

type testSource struct {
	header  Header
	catalog *units.Catalog
	reg     *registry.Registry
	graph   *depgraph.Graph
}

func newSource(std fmi.Standard) *testSource {
	cat := units.New()
	reg := registry.New(cat, std)
	return &testSource{
		header: Header{
			Standard:        std,
			ModelName:       "cart",
			ModelIdentifier: "cart",
			GUID:            "{guid}",
			ModelExchange:   true,
			LogCategories: []LogCategory{
				{Name: "logAll", Debug: false},
				{Name: "logDebug", Debug: true},
			},
			Experiment: Experiment{StopTime: 10, StepSize: 0.01},
		},
		catalog: cat,
		reg:     reg,
		graph:   depgraph.New(reg),
	}
}

func (s *testSource) Header() Header                  { return s.header }
func (s *testSource) Variables() []*registry.Variable { return s.reg.All() }
func (s *testSource) Units() []units.Unit             { return s.catalog.All() }
func (s *testSource) Graph() *depgraph.Graph          { return s.graph }

func (s *testSource) real(t *testing.T, name string, value float64, unit string, c fmi.Causality, i fmi.Initial) *float64 {
	t.Helper()
	p := new(float64)
	*p = value
	_, err := s.reg.Register(registry.Ref(p), name, fmi.Real, unit, "", c, fmi.Continuous, i)
	require.NoError(t, err)
	return p
}

// Generic element tree for assertions.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []node     `xml:",any"`
}

func (n node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n node) child(name string) (node, bool) {
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			return c, true
		}
	}
	return node{}, false
}

func (n node) find(t *testing.T, path ...string) node {
	t.Helper()
	cur := n
	for _, p := range path {
		next, ok := cur.child(p)
		require.Truef(t, ok, "element %s not found under %s", p, cur.XMLName.Local)
		cur = next
	}
	return cur
}

func render(t *testing.T, src Source) (string, node) {
	t.Helper()
	data, err := Render(src)
	require.NoError(t, err)

	var root node
	require.NoError(t, xml.Unmarshal(data, &root))
	return string(data), root
}

func TestMissingDependencyAbortsExport(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.real(t, "p", 1, "", fmi.Parameter, fmi.InitialNone)
	src.real(t, "y", 0, "", fmi.Output, fmi.Calculated)

	var buf bytes.Buffer
	err := Write(&buf, src)
	assert.ErrorIs(t, err, fmi.ErrMissingDependency)
	assert.Zero(t, buf.Len(), "nothing may be written on failure")

	require.NoError(t, src.graph.DeclareVariableDependencies("y", []string{"p"}))
	assert.NoError(t, Write(&buf, src))
	assert.NotZero(t, buf.Len())
}

func TestWriteFileLeavesNothingOnFailure(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.real(t, "y", 0, "", fmi.CalculatedParameter, fmi.InitialNone)

	dir := filepath.Join(t.TempDir(), "out")
	_, err := WriteFile(dir, src)
	require.ErrorIs(t, err, fmi.ErrMissingDependency)

	_, statErr := os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFile(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.real(t, "x", 0.5, "m", fmi.Output, fmi.Exact)

	path, err := WriteFile(t.TempDir(), src)
	require.NoError(t, err)
	assert.Equal(t, FileName, filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))
}

func TestStartCapturedAtRegistrationIsExported(t *testing.T) {
	src := newSource(fmi.FMI2)
	x := src.real(t, "x", 0.5, "", fmi.Output, fmi.Exact)
	*x = 3

	_, root := render(t, src)
	scalar := root.find(t, "ModelVariables", "ScalarVariable")
	start, ok := scalar.find(t, "Real").attr("start")
	require.True(t, ok)
	assert.Equal(t, "0.5", start)
}

func TestDerivativeCrossReferences(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.real(t, "x", 0, "m", fmi.Output, fmi.Exact)
	src.real(t, "der(x)", 0, "m/s", fmi.Local, fmi.Calculated)
	src.real(t, "v", 0, "m/s", fmi.Output, fmi.Exact)
	require.NoError(t, src.graph.DeclareStateDerivative("der(x)", "x", []string{"v"}))

	// Name order: der(x)=1, v=2, x=3.
	_, root := render(t, src)

	derivs := root.find(t, "ModelStructure", "Derivatives")
	require.Len(t, derivs.Children, 1)
	idx, _ := derivs.Children[0].attr("index")
	deps, _ := derivs.Children[0].attr("dependencies")
	assert.Equal(t, "1", idx)
	assert.Equal(t, "2", deps)

	vars := root.find(t, "ModelVariables")
	first := vars.Children[0]
	name, _ := first.attr("name")
	require.Equal(t, "der(x)", name)
	derivative, ok := first.find(t, "Real").attr("derivative")
	require.True(t, ok)
	assert.Equal(t, "3", derivative)

	outputs := root.find(t, "ModelStructure", "Outputs")
	var got []string
	for _, u := range outputs.Children {
		i, _ := u.attr("index")
		got = append(got, i)
	}
	assert.Equal(t, []string{"2", "3"}, got)
}

func TestCommonUnitDecomposed(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.real(t, "f", 0, "N", fmi.Output, fmi.Exact)

	_, root := render(t, src)
	defs := root.find(t, "UnitDefinitions")

	var newton node
	for _, u := range defs.Children {
		if n, _ := u.attr("name"); n == "N" {
			newton = u
		}
	}
	require.Equal(t, "Unit", newton.XMLName.Local, "unit N missing")

	base := newton.find(t, "BaseUnit")
	want := map[string]string{"kg": "1", "m": "1", "s": "-2"}
	require.Len(t, base.Attrs, len(want))
	for k, v := range want {
		got, ok := base.attr(k)
		assert.True(t, ok, k)
		assert.Equal(t, v, got, k)
	}
}

func TestEveryRegisteredUnitEmitted(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.real(t, "f", 0, "N", fmi.Output, fmi.Exact)

	_, root := render(t, src)
	defs := root.find(t, "UnitDefinitions")

	var names []string
	for _, u := range defs.Children {
		n, ok := u.attr("name")
		require.True(t, ok)
		names = append(names, n)
	}
	require.Len(t, names, len(src.catalog.All()))
	assert.Equal(t, []string{"", "1", "N"}, names)

	unassigned := defs.Children[0]
	base := unassigned.find(t, "BaseUnit")
	assert.Empty(t, base.Attrs)
}

func TestOptionalAttributesOmitted(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.real(t, "plain", 1, "", fmi.Local, fmi.InitialNone)

	_, root := render(t, src)
	v := root.find(t, "ModelVariables", "ScalarVariable")
	for _, name := range []string{"description", "causality", "variability", "initial"} {
		_, ok := v.attr(name)
		assert.False(t, ok, name)
	}
	real := v.find(t, "Real")
	assert.Empty(t, real.Attrs)

	_, ok := root.find(t, "ModelStructure").child("Outputs")
	assert.False(t, ok, "empty sections are omitted")
}

func TestHeaderSections(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.header.CoSimulation = true
	src.real(t, "x", 1, "", fmi.Output, fmi.Exact)

	text, root := render(t, src)

	assert.Equal(t, "fmiModelDescription", root.XMLName.Local)
	version, _ := root.attr("fmiVersion")
	assert.Equal(t, "2.0", version)
	count, _ := root.attr("numberOfEventIndicators")
	assert.Equal(t, "0", count)

	var order []string
	for _, c := range root.Children {
		order = append(order, c.XMLName.Local)
	}
	assert.Equal(t, []string{
		"ModelExchange", "CoSimulation", "UnitDefinitions", "LogCategories",
		"DefaultExperiment", "ModelVariables", "ModelStructure",
	}, order)

	exp := root.find(t, "DefaultExperiment")
	step, _ := exp.attr("stepSize")
	assert.Equal(t, "0.01", step)
	_, hasTol := exp.attr("tolerance")
	assert.False(t, hasTol)

	cats := root.find(t, "LogCategories")
	require.Len(t, cats.Children, 2)
	desc, _ := cats.Children[1].attr("description")
	assert.Equal(t, "DebugCategory", desc)

	assert.Contains(t, text, "<!-- Index: 1 -->")
}

func TestUnknownDerivativeDependency(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.real(t, "x", 0, "", fmi.Local, fmi.InitialNone)
	src.real(t, "der(x)", 0, "", fmi.Local, fmi.InitialNone)
	require.NoError(t, src.graph.DeclareStateDerivative("der(x)", "x", []string{"ghost"}))

	_, err := Render(src)
	assert.ErrorIs(t, err, fmi.ErrUnknownVariable)
}

func TestInitialUnknownsSortedByIndex(t *testing.T) {
	src := newSource(fmi.FMI2)
	src.real(t, "a", 0, "", fmi.Parameter, fmi.InitialNone)
	src.real(t, "z", 0, "", fmi.Output, fmi.Calculated)
	src.real(t, "m", 0, "", fmi.Output, fmi.Calculated)
	require.NoError(t, src.graph.DeclareVariableDependencies("z", []string{"a"}))
	require.NoError(t, src.graph.DeclareVariableDependencies("m", []string{"a"}))

	_, root := render(t, src)
	unknowns := root.find(t, "ModelStructure", "InitialUnknowns")
	require.Len(t, unknowns.Children, 2)
	first, _ := unknowns.Children[0].attr("index")
	second, _ := unknowns.Children[1].attr("index")
	assert.Equal(t, "2", first)
	assert.Equal(t, "3", second)
}

func TestFMI3Dialect(t *testing.T) {
	src := newSource(fmi.FMI3)
	src.real(t, "x", 0, "m", fmi.Output, fmi.Exact)
	src.real(t, "der(x)", 0, "m/s", fmi.Local, fmi.Calculated)
	name := "data.txt"
	_, err := src.reg.Register(registry.Ref(&name), "file", fmi.String, "", "", fmi.Parameter, fmi.Fixed, fmi.Exact)
	require.NoError(t, err)
	require.NoError(t, src.graph.DeclareStateDerivative("der(x)", "x", nil))

	_, root := render(t, src)

	version, _ := root.attr("fmiVersion")
	assert.Equal(t, "3.0", version)
	token, _ := root.attr("instantiationToken")
	assert.Equal(t, "{guid}", token)

	vars := root.find(t, "ModelVariables")
	byName := map[string]node{}
	for _, v := range vars.Children {
		n, _ := v.attr("name")
		byName[n] = v
	}

	x := byName["x"]
	assert.Equal(t, "Float64", x.XMLName.Local)
	xRef, _ := x.attr("valueReference")
	assert.Equal(t, "1", xRef)
	unit, _ := x.attr("unit")
	assert.Equal(t, "m", unit)

	der := byName["der(x)"]
	derivative, _ := der.attr("derivative")
	assert.Equal(t, xRef, derivative)

	file := byName["file"]
	assert.Equal(t, "String", file.XMLName.Local)
	start := file.find(t, "Start")
	value, _ := start.attr("value")
	assert.Equal(t, "data.txt", value)
	fileRef, _ := file.attr("valueReference")
	assert.Equal(t, "3", fileRef, "value references are shared across types")

	structure := root.find(t, "ModelStructure")
	out := structure.find(t, "Output")
	outRef, _ := out.attr("valueReference")
	assert.Equal(t, "1", outRef)
	csd := structure.find(t, "ContinuousStateDerivative")
	csdRef, _ := csd.attr("valueReference")
	assert.Equal(t, "2", csdRef)
}

// Package modeldesc renders the model description document of a component:
// the XML file a host reads to learn the variables, units, capabilities and
// model structure of an FMU.
//
// Two dialects are supported. FMI 2.0 documents cross-reference variables by
// their 1-based position in name order; FMI 3.0 documents use value
// references. In both, dependency declarations are validated before any
// output is produced, so a failed export never leaves a partial file.
package modeldesc

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/san-kum/fmukit/internal/depgraph"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/registry"
	"github.com/san-kum/fmukit/internal/units"
)

// FileName is the name of the document inside an FMU archive.
const FileName = "modelDescription.xml"

// DefaultGenerationTool is used when a header leaves GenerationTool empty.
const DefaultGenerationTool = "fmukit"

type LogCategory struct {
	Name  string
	Debug bool
}

// Experiment holds the default experiment. StepSize and Tolerance are
// written only when positive.
type Experiment struct {
	StartTime float64
	StopTime  float64
	StepSize  float64
	Tolerance float64
}

// Header is everything in the document that is not derived from the
// registry, the unit catalog or the dependency graph.
type Header struct {
	Standard        fmi.Standard
	ModelName       string
	ModelIdentifier string
	GUID            string
	Description     string
	GenerationTool  string
	CoSimulation    bool
	ModelExchange   bool
	LogCategories   []LogCategory
	Experiment      Experiment
}

// Source supplies the content of a document.
type Source interface {
	Header() Header
	Variables() []*registry.Variable
	Units() []units.Unit
	Graph() *depgraph.Graph
}

// Write renders the document for src to w. Nothing is written when
// validation fails.
func Write(w io.Writer, src Source) error {
	data, err := Render(src)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile renders the document and stores it as dir/modelDescription.xml.
func WriteFile(dir string, src Source) (string, error) {
	data, err := Render(src)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Render returns the complete document.
func Render(src Source) ([]byte, error) {
	m, err := newModel(src)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	e := newEncoder(&buf)
	switch m.header.Standard {
	case fmi.FMI2:
		writeFMI2(e, m)
	case fmi.FMI3:
		writeFMI3(e, m)
	default:
		return nil, fmt.Errorf("modeldesc: unsupported standard %v", m.header.Standard)
	}
	if err := e.close(); err != nil {
		return nil, fmt.Errorf("modeldesc: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// model is the validated, cross-referenced view of a Source.
type model struct {
	header      Header
	vars        []*registry.Variable
	units       []units.Unit
	graph       *depgraph.Graph
	index       map[string]int
	byName      map[string]*registry.Variable
	stateOf     map[string]string
	debug       map[string]bool
	outputs     []*registry.Variable
	derivatives []depgraph.DerivativeRecord
	unknowns    []depgraph.DependencyRecord
}

func newModel(src Source) (*model, error) {
	vars := src.Variables()
	graph := src.Graph()
	if err := graph.Validate(vars); err != nil {
		return nil, err
	}

	m := &model{
		header:  src.Header(),
		vars:    vars,
		units:   src.Units(),
		graph:   graph,
		index:   make(map[string]int, len(vars)),
		byName:  make(map[string]*registry.Variable, len(vars)),
		stateOf: make(map[string]string),
		debug:   make(map[string]bool),
	}
	if m.header.GenerationTool == "" {
		m.header.GenerationTool = DefaultGenerationTool
	}
	for i, v := range vars {
		m.index[v.Name()] = i + 1
		m.byName[v.Name()] = v
		if v.Causality() == fmi.Output {
			m.outputs = append(m.outputs, v)
		}
	}
	for _, c := range m.header.LogCategories {
		m.debug[c.Name] = c.Debug
	}

	for _, d := range graph.Derivatives() {
		if err := m.known("derivative", d.Derivative, d.Dependencies); err != nil {
			return nil, err
		}
		m.stateOf[d.Derivative] = d.State
	}
	m.derivatives = graph.Derivatives()

	m.unknowns = sortedByIndex(graph.Dependencies(), m.index)
	for _, d := range m.unknowns {
		if err := m.known("initial unknown", d.Variable, d.Dependencies); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// known checks that every name referenced from the structure section can be
// resolved. Derivative dependencies are not checked when declared.
func (m *model) known(section, owner string, deps []string) error {
	for _, d := range deps {
		if _, ok := m.index[d]; !ok {
			return fmi.NewError(fmi.ErrUnknownVariable, "export "+section, d,
				fmt.Sprintf("listed as dependency of %q", owner))
		}
	}
	return nil
}

func sortedByIndex(recs []depgraph.DependencyRecord, index map[string]int) []depgraph.DependencyRecord {
	out := make([]depgraph.DependencyRecord, len(recs))
	copy(out, recs)
	slices.SortStableFunc(out, func(a, b depgraph.DependencyRecord) int {
		return cmp.Compare(index[a.Variable], index[b.Variable])
	})
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

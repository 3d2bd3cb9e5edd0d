package component

import (
	"io"

	"github.com/san-kum/fmukit/internal/depgraph"
	"github.com/san-kum/fmukit/internal/modeldesc"
	"github.com/san-kum/fmukit/internal/registry"
	"github.com/san-kum/fmukit/internal/units"
)

// Header implements modeldesc.Source.
func (c *Component) Header() modeldesc.Header {
	cats := make([]modeldesc.LogCategory, 0, len(c.categories))
	for name := range c.categories {
		cats = append(cats, modeldesc.LogCategory{Name: name, Debug: c.debug[name]})
	}
	return modeldesc.Header{
		Standard:        c.info.Standard,
		ModelName:       c.info.ModelName,
		ModelIdentifier: c.info.ModelIdentifier,
		GUID:            c.info.GUID,
		Description:     c.info.Description,
		CoSimulation:    c.info.CoSimulation,
		ModelExchange:   c.info.ModelExchange,
		LogCategories:   cats,
		Experiment:      c.info.Experiment,
	}
}

func (c *Component) Variables() []*registry.Variable { return c.vars.All() }
func (c *Component) Units() []units.Unit             { return c.units.All() }
func (c *Component) Graph() *depgraph.Graph          { return c.graph }

// ExportModelDescription writes dir/modelDescription.xml and returns its
// path.
func (c *Component) ExportModelDescription(dir string) (string, error) {
	return modeldesc.WriteFile(dir, c)
}

func (c *Component) WriteModelDescription(w io.Writer) error {
	return modeldesc.Write(w, c)
}

package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/fmukit/internal/component"
)

type Registry struct {
	models map[string]component.Factory
}

// NewRegistry returns a registry holding every bundled model.
func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]component.Factory)}

	r.mustRegister(func() component.Model { return NewCartPendulum() })
	r.mustRegister(func() component.Model { return NewPendulum() })

	return r
}

// Register adds a factory under the identifier of the model it builds.
func (r *Registry) Register(f component.Factory) error {
	name := f().Info().ModelIdentifier
	if name == "" {
		return fmt.Errorf("model has no identifier")
	}
	if _, exists := r.models[name]; exists {
		return fmt.Errorf("model already registered: %s", name)
	}
	r.models[name] = f
	return nil
}

func (r *Registry) mustRegister(f component.Factory) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(name string) (component.Factory, error) {
	f, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return f, nil
}

// Info returns the static description of a registered model.
func (r *Registry) Info(name string) (component.Info, error) {
	f, err := r.Get(name)
	if err != nil {
		return component.Info{}, err
	}
	return f().Info(), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

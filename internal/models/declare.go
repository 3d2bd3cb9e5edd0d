package models

import (
	"github.com/san-kum/fmukit/internal/component"
	"github.com/san-kum/fmukit/internal/registry"
)

type variable struct {
	binding registry.Binding
	component.Declaration
}

// declare adds vars in order and stops at the first failure.
func declare(c *component.Component, vars []variable) error {
	for _, v := range vars {
		if _, err := c.AddVariable(v.binding, v.Declaration); err != nil {
			return err
		}
	}
	return nil
}

type dependency struct {
	variable string
	deps     []string
}

func dependsOn(c *component.Component, list []dependency) error {
	for _, d := range list {
		if err := c.DeclareVariableDependencies(d.variable, d.deps...); err != nil {
			return err
		}
	}
	return nil
}

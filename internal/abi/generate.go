package abi

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/fmukit/internal/component"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/logging"
)

// GenerateModelDescription instantiates the model in co-simulation mode,
// falling back to model exchange, and writes its model description into
// dir. It returns the path of the written file.
func GenerateModelDescription(factory component.Factory, dir, resourceLocation string) (string, error) {
	return generate(factory, dir, resourceLocation, nil)
}

// GenerateModelDescriptionFor is GenerateModelDescription for a standard
// revision other than the one the model reports.
func GenerateModelDescriptionFor(factory component.Factory, dir, resourceLocation string, standard fmi.Standard) (string, error) {
	return generate(factory, dir, resourceLocation, &standard)
}

func generate(factory component.Factory, dir, resourceLocation string, standard *fmi.Standard) (string, error) {
	var errs []error
	for _, mode := range []fmi.Mode{fmi.CoSimulation, fmi.ModelExchange} {
		c, err := component.Instantiate(factory(), component.Options{
			InstanceName:     "modelDescriptionGenerator",
			Mode:             mode,
			ResourceLocation: resourceLocation,
			Logger:           logging.Discard,
			Standard:         standard,
		})
		if err != nil {
			logging.Logger().Debug("instantiation for description failed",
				zap.Stringer("mode", mode), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		return c.ExportModelDescription(dir)
	}
	return "", fmt.Errorf("no mode could be instantiated: %w", errors.Join(errs...))
}

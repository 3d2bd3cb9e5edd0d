package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/fmukit/internal/abi"
	"github.com/san-kum/fmukit/internal/component"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/modeldesc"
	"github.com/san-kum/fmukit/internal/tui"
)

var (
	outputDir    string
	resourceDir  string
	interactive  bool
	causalityArg string
	modeArg      string
)

func describeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [model]",
		Short: "write " + modeldesc.FileName,
		Args:  cobra.MaximumNArgs(1),
		RunE:  describeModel,
	}
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory")
	cmd.Flags().StringVar(&resourceDir, "resources", "", "resources directory of the unpacked FMU")
	return cmd
}

func describeModel(cmd *cobra.Command, args []string) error {
	factory, err := catalog.Get(modelName(args))
	if err != nil {
		return err
	}

	dir := cfg.OutputDir
	if cmd.Flags().Changed("out") {
		dir = outputDir
	}
	location := resourceLocation(cmd)

	var path string
	if std := cfg.FMIStandard(); std != factory().Info().Standard {
		path, err = abi.GenerateModelDescriptionFor(factory, dir, location, std)
	} else {
		path, err = abi.GenerateModelDescription(factory, dir, location)
	}
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}

func resourceLocation(cmd *cobra.Command) string {
	dir := cfg.ResourceDir
	if cmd.Flags().Changed("resources") {
		dir = resourceDir
	}
	if dir == "" {
		return ""
	}
	return component.ResourceURI(dir)
}

func inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [model]",
		Short: "list the variables of a model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectModel,
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse variables interactively")
	cmd.Flags().StringVar(&causalityArg, "causality", "", "only show variables with this causality")
	cmd.Flags().StringVar(&modeArg, "mode", "", "instantiate as cs or me (default: co-simulation when supported)")
	cmd.Flags().StringVar(&resourceDir, "resources", "", "resources directory of the unpacked FMU")
	return cmd
}

func inspectModel(cmd *cobra.Command, args []string) error {
	name := modelName(args)
	factory, err := catalog.Get(name)
	if err != nil {
		return err
	}

	model := factory()
	mode := fmi.CoSimulation
	if !model.Info().CoSimulation {
		mode = fmi.ModelExchange
	}
	if modeArg != "" {
		if mode, err = fmi.ParseMode(modeArg); err != nil {
			return err
		}
	}
	std := cfg.FMIStandard()
	c, err := component.Instantiate(model, component.Options{
		InstanceName:     name,
		Mode:             mode,
		ResourceLocation: resourceLocation(cmd),
		Standard:         &std,
	})
	if err != nil {
		return err
	}

	vars := c.Variables()
	if causalityArg != "" {
		causality, err := fmi.ParseCausality(causalityArg)
		if err != nil {
			return err
		}
		vars = tui.FilterCausality(vars, causality)
	}

	if interactive {
		if !tui.IsTerminal(os.Stdout) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		title := fmt.Sprintf("%s  FMI %s  %s", name, std, mode)
		return tui.RunBrowser(tui.NewBrowser(title, vars, c.Graph()))
	}

	fmt.Printf("model: %s (%s, FMI %s)\n", name, mode, std)
	fmt.Printf("states: %d   variables: %d\n\n", c.NumStates(), len(vars))
	return tui.WriteTable(os.Stdout, vars, tui.IsTerminal(os.Stdout))
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fmukit/internal/config"
	"github.com/san-kum/fmukit/internal/export"
	"github.com/san-kum/fmukit/internal/storage"
)

var (
	plotVars   []string
	svgDir     string
	exportPath string
)

const maxPlots = 6

func runsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}
}

func plotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the outputs of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().StringSliceVar(&plotVars, "var", nil, "outputs to plot (default all)")
	cmd.Flags().StringVar(&svgDir, "svg", "", "also write one svg per output into this directory")
	return cmd
}

func exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(cfg.DataDir)
			if exportPath == "" {
				return st.Export(os.Stdout, args[0])
			}
			if err := st.ExportFile(exportPath, args[0]); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", exportPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&exportPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func modelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "list available models",
		RunE:  listModels,
	}
}

func presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [model]",
		Short: "list experiment presets for a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := modelName(args)
			presets := config.ListPresets(model)
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", model)
				return nil
			}
			fmt.Printf("presets for %s:\n", model)
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMODE\tTIME\tSTOP\tSTEP\tSOLVER\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Stop,
			run.Step,
			run.Solver,
			run.Steps,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	names := plotVars
	if len(names) == 0 {
		names = series.Names
		if len(names) > maxPlots {
			names = names[:maxPlots]
		}
	}

	for _, name := range names {
		data, ok := series.Column(name)
		if !ok {
			return fmt.Errorf("run %s has no output %q", runID, name)
		}

		caption := fmt.Sprintf("%s vs time (%g..%g s)", name, series.Times[0], series.Times[len(series.Times)-1])
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()

		if svgDir != "" {
			path := filepath.Join(svgDir, fmt.Sprintf("%s_%s.svg", meta.ID, name))
			svg := export.SeriesSVG(series.Times, data, 800, 300, "#00ff00")
			if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n\n", path)
		}
	}

	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFMI\tCS\tME\tDESCRIPTION")
	for _, name := range catalog.List() {
		info, err := catalog.Info(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n",
			name, info.Standard, info.CoSimulation, info.ModelExchange, info.Description)
	}
	return w.Flush()
}

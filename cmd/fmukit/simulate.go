package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/fmukit/internal/abi"
	"github.com/san-kum/fmukit/internal/config"
	"github.com/san-kum/fmukit/internal/host"
	"github.com/san-kum/fmukit/internal/logging"
	"github.com/san-kum/fmukit/internal/metrics"
	"github.com/san-kum/fmukit/internal/storage"
	"github.com/san-kum/fmukit/internal/tui"
)

var (
	start     float64
	stop      float64
	step      float64
	tolerance float64
	solver    string
	retries   int
	setValues map[string]string
	outputs   []string
	preset    string
	live      bool
	noSave    bool
	debug     bool

	sweepParam  string
	sweepValues []string
	workers     int
)

const divergenceBound = 1e6

func addExperimentFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&start, "start", config.DefaultStart, "start time")
	cmd.Flags().Float64Var(&stop, "stop", config.DefaultStop, "stop time")
	cmd.Flags().Float64Var(&step, "step", config.DefaultStep, "communication step size")
	cmd.Flags().Float64Var(&tolerance, "tol", 0, "relative tolerance (0 uses the model default)")
	cmd.Flags().StringVar(&solver, "solver", config.DefaultSolver, "integrator for model-exchange models")
	cmd.Flags().IntVar(&retries, "retries", config.DefaultRetries, "halvings of a discarded step")
	cmd.Flags().StringToStringVar(&setValues, "set", nil, "variable values (name=value)")
	cmd.Flags().StringSliceVar(&outputs, "outputs", nil, "variables to record")
	cmd.Flags().StringVar(&preset, "preset", "", "experiment preset")
	cmd.Flags().StringVar(&resourceDir, "resources", "", "resources directory of the unpacked FMU")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging in the instance")
}

func simulateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [model]",
		Short: "run an experiment on a model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addExperimentFlags(cmd)
	cmd.Flags().BoolVar(&live, "live", false, "animate the run in the terminal")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func sweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run one experiment per value of a variable",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addExperimentFlags(cmd)
	cmd.Flags().StringVar(&sweepParam, "param", "", "variable to sweep")
	cmd.Flags().StringSliceVar(&sweepValues, "values", nil, "values of the swept variable")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 uses all CPUs)")
	cmd.MarkFlagRequired("param")
	cmd.MarkFlagRequired("values")
	return cmd
}

// experimentConfig layers the preset and the explicit flags over the
// project configuration.
func experimentConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	run := *cfg
	run.Values = make(map[string]string, len(cfg.Values))
	for k, v := range cfg.Values {
		run.Values[k] = v
	}
	if len(args) > 0 {
		run.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(run.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for model %s", preset, run.Model)
		}
		run.Apply(p)
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		run.Experiment.Start = start
	}
	if flags.Changed("stop") {
		run.Experiment.Stop = stop
	}
	if flags.Changed("step") {
		run.Experiment.Step = step
	}
	if flags.Changed("tol") {
		run.Experiment.Tolerance = tolerance
	}
	if flags.Changed("solver") {
		run.Experiment.Solver = solver
	}
	if flags.Changed("retries") {
		run.Experiment.MaxRetries = retries
	}
	if flags.Changed("outputs") {
		run.Outputs = outputs
	}
	if flags.Changed("resources") {
		run.ResourceDir = resourceDir
	}
	for k, v := range setValues {
		run.Values[k] = v
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}
	return &run, nil
}

func hostOptions(run *config.Config) host.Options {
	return host.Options{
		Start:       run.Experiment.Start,
		Stop:        run.Experiment.Stop,
		Step:        run.Experiment.Step,
		Tolerance:   run.Experiment.Tolerance,
		Solver:      run.Experiment.Solver,
		MaxRetries:  run.Experiment.MaxRetries,
		Outputs:     run.Outputs,
		Values:      run.Values,
		ResourceDir: run.ResourceDir,
		Logger:      logging.Zap(logging.Logger()),
		Debug:       debug,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	run, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}
	factory, err := catalog.Get(run.Model)
	if err != nil {
		return err
	}
	table := abi.New(factory)
	opts := hostOptions(run)

	observed := runMetrics(run.Outputs)
	opts.Observer = observed.Observe
	if live {
		if !tui.IsTerminal(os.Stdout) {
			return fmt.Errorf("live mode needs a terminal")
		}
		renderer := tui.NewLiveRenderer(os.Stdout, run.Model, 30)
		opts.Observer = func(t float64, names []string, row []float64) {
			observed.Observe(t, names, row)
			renderer.OnStep(t, names, row)
		}
		renderer.Start()
		defer renderer.Stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logging.Logger().Info("simulation started",
		zap.String("model", run.Model),
		zap.Float64("start", run.Experiment.Start),
		zap.Float64("stop", run.Experiment.Stop),
		zap.Float64("step", run.Experiment.Step))

	began := time.Now()
	result, err := host.Simulate(ctx, table, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)
	summary := observed.Values()

	fmt.Printf("model: %s (%s)\n", result.Model, result.Mode)
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d   retries: %d\n", result.Steps, result.Retries)

	if !noSave {
		st := storage.New(run.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Standard: table.Info().Standard.String(),
			Start:    run.Experiment.Start,
			Stop:     run.Experiment.Stop,
			Step:     run.Experiment.Step,
			Solver:   run.Experiment.Solver,
			Metrics:  summary,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nfinal values:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range result.Names {
		v, _ := result.Last(name)
		fmt.Fprintf(w, "  %s\t%.6f\n", name, v)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nmetrics:")
	for _, m := range observed {
		fmt.Printf("  %s: %.6g\n", m.Name(), summary[m.Name()])
	}
	return nil
}

// runMetrics watches every recorded value for blow-up and, when the energy
// output is recorded, its drift.
func runMetrics(outputs []string) metrics.Set {
	set := metrics.Set{metrics.NewStability(divergenceBound)}
	if len(outputs) == 0 || slices.Contains(outputs, "energy") {
		set = append(set, metrics.NewDrift("energy"))
	}
	return set
}

func runSweep(cmd *cobra.Command, args []string) error {
	run, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}
	factory, err := catalog.Get(run.Model)
	if err != nil {
		return err
	}

	variants := make([]map[string]string, len(sweepValues))
	for i, v := range sweepValues {
		variants[i] = map[string]string{sweepParam: strings.TrimSpace(v)}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	results, err := host.Sweep(ctx, abi.New(factory), hostOptions(run), variants, workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := []string{strings.ToUpper(sweepParam), "STEPS", "RETRIES"}
	if len(results) > 0 {
		header = append(header, results[0].Names...)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i, res := range results {
		row := []string{variants[i][sweepParam], strconv.Itoa(res.Steps), strconv.Itoa(res.Retries)}
		for _, name := range res.Names {
			v, _ := res.Last(name)
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

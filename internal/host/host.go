package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/san-kum/fmukit/internal/abi"
	"github.com/san-kum/fmukit/internal/component"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/logging"
)

var (
	ErrInvalidOptions = errors.New("host: invalid options")
	ErrStepRejected   = errors.New("host: step rejected")
)

// Options describe one simulation run.
type Options struct {
	InstanceName string
	Start        float64
	Stop         float64
	Step         float64
	Tolerance    float64

	// Solver integrates model-exchange instances. Ignored for
	// co-simulation.
	Solver string

	// Outputs are the Real variables recorded at every communication
	// point. When empty every Real output is recorded.
	Outputs []string

	// Values are assigned during initialization. Each value is parsed
	// according to the type of the named variable.
	Values map[string]string

	// MaxRetries bounds how many times a discarded step is retried with
	// half the step size.
	MaxRetries int

	ResourceDir string
	Logger      logging.Callback
	Debug       bool

	// Observer, when set, is called with every recorded row. The row is
	// owned by the result and must not be modified.
	Observer func(t float64, names []string, row []float64)
}

func (o Options) validate() error {
	switch {
	case o.Step <= 0:
		return fmt.Errorf("%w: step must be positive, got %g", ErrInvalidOptions, o.Step)
	case o.Stop <= o.Start:
		return fmt.Errorf("%w: stop %g not after start %g", ErrInvalidOptions, o.Stop, o.Start)
	case o.MaxRetries < 0:
		return fmt.Errorf("%w: negative retry count", ErrInvalidOptions)
	}
	return nil
}

// Result holds the recorded trajectory of a run.
type Result struct {
	Model   string
	Mode    fmi.Mode
	Names   []string
	Times   []float64
	Rows    [][]float64
	Steps   int
	Retries int
	Values  map[string]string
}

// Column returns the recorded values of the named output.
func (r *Result) Column(name string) ([]float64, bool) {
	for i, n := range r.Names {
		if n != name {
			continue
		}
		col := make([]float64, len(r.Rows))
		for j, row := range r.Rows {
			col[j] = row[i]
		}
		return col, true
	}
	return nil, false
}

// Last returns the final value of the named output.
func (r *Result) Last(name string) (float64, bool) {
	col, ok := r.Column(name)
	if !ok || len(col) == 0 {
		return 0, false
	}
	return col[len(col)-1], true
}

// Simulate runs one experiment on a fresh instance from table. Models that
// support co-simulation are stepped; the others are integrated as model
// exchange. The instance is freed before returning. On cancellation the
// partial result is returned with the context error.
func Simulate(ctx context.Context, table *abi.Table, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	info := table.Info()
	mode := fmi.ModelExchange
	if info.CoSimulation {
		mode = fmi.CoSimulation
	}
	if opts.InstanceName == "" {
		opts.InstanceName = info.ModelIdentifier
	}

	r, err := open(table, mode, opts)
	if err != nil {
		return nil, err
	}
	defer r.close()

	if err := r.initialize(); err != nil {
		return nil, err
	}
	res := &Result{
		Model:  info.ModelIdentifier,
		Mode:   mode,
		Names:  r.outputNames(),
		Values: opts.Values,
	}
	if err := r.record(res, opts.Start); err != nil {
		return res, err
	}

	if mode == fmi.CoSimulation {
		err = r.runCoSimulation(ctx, res)
	} else {
		err = r.runModelExchange(ctx, res)
	}
	if err != nil {
		return res, err
	}

	if status := table.Terminate(r.h); status > fmi.Warning {
		return res, fmt.Errorf("terminate: status %s", status)
	}
	return res, nil
}

// run is one live instance and the state shared by both drivers.
type run struct {
	table *abi.Table
	h     abi.Handle
	c     *component.Component
	opts  Options

	outputs []fmi.ValueReference
	buf     []float64
}

func open(table *abi.Table, mode fmi.Mode, opts Options) (*run, error) {
	location := ""
	if opts.ResourceDir != "" {
		location = component.ResourceURI(opts.ResourceDir)
	}
	h, err := table.Instantiate(opts.InstanceName, mode, "", location, opts.Logger, false, true)
	if err != nil {
		return nil, err
	}
	c, _ := table.Component(h)
	if opts.Debug {
		c.SetDebugLogging(true)
	}
	r := &run{table: table, h: h, c: c, opts: opts}

	if err := r.resolveOutputs(); err != nil {
		r.close()
		return nil, err
	}
	return r, nil
}

func (r *run) close() {
	r.table.FreeInstance(r.h)
}

func (r *run) resolveOutputs() error {
	vars := r.c.Registry()
	if len(r.opts.Outputs) == 0 {
		for _, v := range vars.All() {
			if v.Causality() == fmi.Output && v.Type() == fmi.Real {
				r.outputs = append(r.outputs, v.Reference())
			}
		}
	} else {
		for _, name := range r.opts.Outputs {
			v, ok := vars.FindByName(name)
			if !ok {
				return fmi.NewError(fmi.ErrUnknownVariable, "record", name, "")
			}
			if v.Type() != fmi.Real {
				return fmi.NewError(fmi.ErrTypeMismatch, "record", name, "only Real variables can be recorded")
			}
			r.outputs = append(r.outputs, v.Reference())
		}
	}
	r.buf = make([]float64, len(r.outputs))
	return nil
}

func (r *run) outputNames() []string {
	names := make([]string, len(r.outputs))
	for i, ref := range r.outputs {
		v, _ := r.c.Registry().Lookup(fmi.Real, ref)
		names[i] = v.Name()
	}
	return names
}

func (r *run) initialize() error {
	o := r.opts
	r.table.SetupExperiment(r.h, o.Tolerance > 0, o.Tolerance, o.Start, true, o.Stop)

	if status := r.table.EnterInitializationMode(r.h); status > fmi.Warning {
		return fmt.Errorf("enter initialization mode: status %s", status)
	}
	for name, raw := range o.Values {
		if err := r.assign(name, raw); err != nil {
			return err
		}
	}
	if status := r.table.ExitInitializationMode(r.h); status > fmi.Warning {
		return fmt.Errorf("exit initialization mode: status %s", status)
	}
	return nil
}

// assign parses raw for the type of the named variable and writes it.
func (r *run) assign(name, raw string) error {
	v, ok := r.c.Registry().FindByName(name)
	if !ok {
		return fmi.NewError(fmi.ErrUnknownVariable, "assign", name, "")
	}
	refs := []fmi.ValueReference{v.Reference()}

	var status fmi.Status
	switch v.Type() {
	case fmi.Real:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("assign %s: %w", name, err)
		}
		status = r.table.SetReal(r.h, refs, []float64{f})
	case fmi.Integer:
		i, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("assign %s: %w", name, err)
		}
		status = r.table.SetInteger(r.h, refs, []int32{int32(i)})
	case fmi.Boolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("assign %s: %w", name, err)
		}
		status = r.table.SetBoolean(r.h, refs, []bool{b})
	default:
		status = r.table.SetString(r.h, refs, []string{raw})
	}
	if status > fmi.Warning {
		return fmt.Errorf("assign %s: status %s", name, status)
	}
	return nil
}

// record reads the outputs at t and appends them as a row. A failed read
// appends nothing.
func (r *run) record(res *Result, t float64) error {
	if status := r.table.GetReal(r.h, r.outputs, r.buf); status > fmi.Warning {
		return fmt.Errorf("read outputs at t=%g: status %s", t, status)
	}
	row := make([]float64, len(r.buf))
	copy(row, r.buf)
	res.Times = append(res.Times, t)
	res.Rows = append(res.Rows, row)
	if r.opts.Observer != nil {
		r.opts.Observer(t, res.Names, row)
	}
	return nil
}

// points returns the number of communication intervals in [start, stop].
func (r *run) points() int {
	return int(math.Ceil((r.opts.Stop-r.opts.Start)/r.opts.Step - 1e-9))
}

func (r *run) runCoSimulation(ctx context.Context, res *Result) error {
	o := r.opts
	t := o.Start
	for i := 0; i < r.points(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		h := math.Min(o.Step, o.Stop-t)
		if err := r.step(res, t, h); err != nil {
			return err
		}
		t += h
		res.Steps++
		if err := r.record(res, t); err != nil {
			return err
		}
	}
	logging.Logger().Debug("co-simulation finished",
		zap.String("instance", o.InstanceName),
		zap.Int("steps", res.Steps),
		zap.Int("retries", res.Retries))
	return nil
}

// step advances by h, splitting the interval in halves whenever the model
// discards a step.
func (r *run) step(res *Result, t, h float64) error {
	status := r.table.DoStep(r.h, t, h, true)
	switch {
	case status == fmi.OK || status == fmi.Warning:
		return nil
	case status == fmi.Discard && res.Retries < r.opts.MaxRetries:
		res.Retries++
		half := h / 2
		if err := r.step(res, t, half); err != nil {
			return err
		}
		return r.step(res, t+half, half)
	case status == fmi.Discard:
		return fmt.Errorf("%w at t=%g after %d retries", ErrStepRejected, t, res.Retries)
	default:
		return fmt.Errorf("do step at t=%g: status %s", t, status)
	}
}

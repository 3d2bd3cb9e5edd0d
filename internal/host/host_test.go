package host

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/fmukit/internal/abi"
	"github.com/san-kum/fmukit/internal/component"
	"github.com/san-kum/fmukit/internal/dynamo"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/integrators"
	"github.com/san-kum/fmukit/internal/logging"
	"github.com/san-kum/fmukit/internal/models"
	"github.com/san-kum/fmukit/internal/physics"
	"github.com/san-kum/fmukit/internal/registry"
)

// picky discards any step longer than limit and counts elapsed time.
type picky struct {
	elapsed float64
	limit   float64
}

func (p *picky) Info() component.Info {
	return component.Info{ModelIdentifier: "picky", CoSimulation: true}
}

func (p *picky) Configure(c *component.Component) error {
	_, err := c.AddVariable(registry.Ref(&p.elapsed), component.Declaration{
		Name: "elapsed", Unit: "s", Causality: fmi.Output, Initial: fmi.Exact,
	})
	return err
}

func (p *picky) DoStep(t, h float64, _ bool) fmi.Status {
	if h > p.limit+1e-12 {
		return fmi.Discard
	}
	p.elapsed += h
	return fmi.OK
}

func pickyTable(limit float64) *abi.Table {
	return abi.New(func() component.Model { return &picky{limit: limit} })
}

func modelTable(t *testing.T, name string) *abi.Table {
	t.Helper()
	f, err := models.NewRegistry().Get(name)
	require.NoError(t, err)
	return abi.New(f)
}

func baseOptions() Options {
	return Options{
		Start:  0,
		Stop:   1,
		Step:   0.1,
		Logger: logging.Discard,
	}
}

func TestSimulateCoSimulation(t *testing.T) {
	table := modelTable(t, "pendulum")

	res, err := Simulate(context.Background(), table, baseOptions())
	require.NoError(t, err)

	assert.Equal(t, fmi.CoSimulation, res.Mode)
	assert.Equal(t, []string{"energy", "omega", "theta"}, res.Names)
	assert.Len(t, res.Times, 11)
	assert.Len(t, res.Rows, 11)
	assert.InDelta(t, 1.0, res.Times[10], 1e-9)
	assert.Equal(t, 10, res.Steps)

	theta, ok := res.Column("theta")
	require.True(t, ok)
	assert.Equal(t, 0.5, theta[0])
	assert.NotEqual(t, theta[0], theta[10])

	assert.Zero(t, table.Len(), "instance must be freed")
}

func TestSimulateValues(t *testing.T) {
	table := modelTable(t, "pendulum")

	free, err := Simulate(context.Background(), table, baseOptions())
	require.NoError(t, err)

	opts := baseOptions()
	opts.Values = map[string]string{"torque": "5", "solver": "rk45"}
	opts.Tolerance = 1e-8
	driven, err := Simulate(context.Background(), table, opts)
	require.NoError(t, err)

	a, _ := free.Last("theta")
	b, _ := driven.Last("theta")
	assert.Greater(t, b, a)
}

func TestSimulateOptionErrors(t *testing.T) {
	table := modelTable(t, "pendulum")

	opts := baseOptions()
	opts.Step = 0
	_, err := Simulate(context.Background(), table, opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	opts = baseOptions()
	opts.Stop = -1
	_, err = Simulate(context.Background(), table, opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	opts = baseOptions()
	opts.Outputs = []string{"phi"}
	_, err = Simulate(context.Background(), table, opts)
	assert.ErrorIs(t, err, fmi.ErrUnknownVariable)

	opts = baseOptions()
	opts.Outputs = []string{"solver"}
	_, err = Simulate(context.Background(), table, opts)
	assert.ErrorIs(t, err, fmi.ErrTypeMismatch)

	opts = baseOptions()
	opts.Values = map[string]string{"mass": "heavy"}
	_, err = Simulate(context.Background(), table, opts)
	assert.Error(t, err)

	assert.Zero(t, table.Len())
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Simulate(ctx, modelTable(t, "pendulum"), baseOptions())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Len(t, res.Rows, 1)
}

func TestSimulateRetriesDiscardedSteps(t *testing.T) {
	opts := baseOptions()
	opts.MaxRetries = 10

	res, err := Simulate(context.Background(), pickyTable(0.05), opts)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Retries)

	elapsed, _ := res.Last("elapsed")
	assert.InDelta(t, 1.0, elapsed, 1e-9)

	opts.MaxRetries = 3
	_, err = Simulate(context.Background(), pickyTable(0.05), opts)
	assert.ErrorIs(t, err, ErrStepRejected)
}

func TestSimulateModelExchange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, models.CartPendulumDataFile), []byte("0.5"), 0o644))

	opts := baseOptions()
	opts.ResourceDir = dir
	opts.Solver = "rk4"
	opts.Step = 0.01
	opts.Outputs = []string{"x", "theta", "v", "omg"}

	res, err := Simulate(context.Background(), modelTable(t, "cartpendulum"), opts)
	require.NoError(t, err)
	assert.Equal(t, fmi.ModelExchange, res.Mode)
	assert.Equal(t, 100, res.Steps)

	// The same solver applied directly to the equations gives the same
	// trajectory.
	sys := physics.NewCartPendulum()
	sys.CartMass += 0.5
	x := dynamo.State{0, math.Pi / 4, 0, 0}
	integ := integrators.NewRK4()
	for i := 0; i < 100; i++ {
		require.NoError(t, integrators.Advance(integ, sys, float64(i)*0.01, 0.01, 0.01, 0, x))
	}

	last := res.Rows[len(res.Rows)-1]
	for i := range x {
		assert.InDelta(t, x[i], last[i], 1e-9, res.Names[i])
	}
}

func TestSimulateModelExchangeMissingResource(t *testing.T) {
	opts := baseOptions()
	opts.ResourceDir = t.TempDir()

	_, err := Simulate(context.Background(), modelTable(t, "cartpendulum"), opts)
	assert.ErrorContains(t, err, "exit initialization mode")
}

func TestSweep(t *testing.T) {
	table := modelTable(t, "pendulum")
	variants := []map[string]string{
		{"torque": "0"},
		{"torque": "1"},
		{"torque": "2"},
		{"torque": "3"},
	}

	opts := baseOptions()
	opts.Values = map[string]string{"damping": "0.5"}
	results, err := Sweep(context.Background(), table, opts, variants, 2)
	require.NoError(t, err)
	require.Len(t, results, len(variants))

	prev := math.Inf(-1)
	for i, res := range results {
		assert.Equal(t, "0.5", res.Values["damping"])
		assert.Equal(t, variants[i]["torque"], res.Values["torque"])
		theta, _ := res.Last("theta")
		assert.Greater(t, theta, prev)
		prev = theta
	}
	assert.Zero(t, table.Len())
	assert.Len(t, opts.Values, 1, "base values must not be modified")
}

func TestSweepFailure(t *testing.T) {
	variants := []map[string]string{{"torque": "1"}, {"torque": "lots"}}

	_, err := Sweep(context.Background(), modelTable(t, "pendulum"), baseOptions(), variants, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variant 1")

	var invalid = baseOptions()
	invalid.Step = -1
	_, err = Sweep(context.Background(), modelTable(t, "pendulum"), invalid, variants, 0)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
}

func TestSimulateObserver(t *testing.T) {
	var times []float64
	opts := baseOptions()
	opts.Outputs = []string{"theta"}
	opts.Observer = func(t float64, names []string, row []float64) {
		times = append(times, t)
	}

	res, err := Simulate(context.Background(), modelTable(t, "pendulum"), opts)
	require.NoError(t, err)
	assert.Equal(t, res.Times, times)
}

func TestRecordFailedReadAppendsNothing(t *testing.T) {
	opts := baseOptions()
	opts.InstanceName = "picky"
	r, err := open(pickyTable(1), fmi.CoSimulation, opts)
	require.NoError(t, err)
	defer r.close()

	res := &Result{Names: r.outputNames()}
	require.NoError(t, r.record(res, 0))
	require.Len(t, res.Rows, 1)

	r.outputs = []fmi.ValueReference{99}
	err = r.record(res, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read outputs at t=0.1")
	assert.Len(t, res.Rows, 1)
	assert.Len(t, res.Times, 1)
}

package component

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/logging"
	"github.com/san-kum/fmukit/internal/registry"
)

type entry struct {
	status   fmi.Status
	category string
	msg      string
}

type recorder struct {
	entries []entry
}

func (r *recorder) log(_ string, status fmi.Status, category, msg string) {
	r.entries = append(r.entries, entry{status, category, msg})
}

func (r *recorder) contains(substr string) bool {
	for _, e := range r.entries {
		if strings.Contains(e.msg, substr) {
			return true
		}
	}
	return false
}

// decay is dx/dt = -k x, usable in both modes.
type decay struct {
	c          *Component
	x, k       float64
	rate       float64
	stepStatus fmi.Status
	failConfig error
	postCalls  int
}

func newDecay() *decay {
	return &decay{x: 1, k: 0.5}
}

func (d *decay) Info() Info {
	return Info{
		ModelIdentifier: "decay",
		GUID:            "{decay}",
		CoSimulation:    true,
		ModelExchange:   true,
		LogCategories:   map[string]bool{"logAll": true, "logVerbose": false, "logStatusWarning": true},
		DebugCategories: []string{"logVerbose"},
	}
}

func (d *decay) Configure(c *Component) error {
	if d.failConfig != nil {
		return d.failConfig
	}
	d.c = c
	if _, err := c.AddVariable(registry.Ref(&d.x), Declaration{
		Name: "x", Causality: fmi.Output, Initial: fmi.Exact,
	}); err != nil {
		return err
	}
	if _, err := c.AddVariable(registry.Ref(&d.k), Declaration{
		Name: "k", Causality: fmi.Parameter, Variability: fmi.Fixed,
	}); err != nil {
		return err
	}
	if _, err := c.AddVariable(registry.Ref(&d.rate), Declaration{
		Name: "der(x)", Initial: fmi.Calculated,
	}); err != nil {
		return err
	}
	if err := c.DeclareStateDerivative("der(x)", "x", "x", "k"); err != nil {
		return err
	}
	c.OnPostStep(func() {
		d.postCalls++
		d.rate = -d.k * d.x
	})
	return nil
}

func (d *decay) DoStep(t, h float64, _ bool) fmi.Status {
	if d.stepStatus != fmi.OK {
		return d.stepStatus
	}
	d.x -= d.k * d.x * h
	return fmi.OK
}

func (d *decay) ContinuousStates(x []float64) fmi.Status {
	x[0] = d.x
	return fmi.OK
}

func (d *decay) SetContinuousStates(x []float64) fmi.Status {
	d.x = x[0]
	return fmi.OK
}

func (d *decay) Derivatives(dx []float64) fmi.Status {
	dx[0] = -d.k * d.x
	return fmi.OK
}

func instantiate(t *testing.T, m Model, mode fmi.Mode) (*Component, *recorder) {
	t.Helper()
	rec := &recorder{}
	c, err := Instantiate(m, Options{
		InstanceName:     "inst",
		Mode:             mode,
		GUID:             "{decay}",
		ResourceLocation: "file:///opt/fmu/resources",
		Logger:           rec.log,
	})
	require.NoError(t, err)
	return c, rec
}

func TestInstantiateRegistersTime(t *testing.T) {
	c, _ := instantiate(t, newDecay(), fmi.CoSimulation)

	v, ok := c.Registry().FindByName("time")
	require.True(t, ok)
	assert.Equal(t, fmi.Independent, v.Causality())
	assert.Equal(t, "s", v.Unit())
	assert.Equal(t, fmi.ValueReference(1), v.Reference())
	assert.Equal(t, fmi.Instantiated, c.State())
}

func TestInstantiateUnsupportedMode(t *testing.T) {
	m := &csOnly{decay: newDecay()}
	_, err := Instantiate(m, Options{Mode: fmi.ModelExchange, Logger: logging.Discard})
	assert.ErrorIs(t, err, fmi.ErrUnsupportedMode)
}

type csOnly struct{ *decay }

func (m *csOnly) Info() Info {
	info := m.decay.Info()
	info.ModelExchange = false
	return info
}

func TestInstantiateConfigureFailure(t *testing.T) {
	d := newDecay()
	d.failConfig = fmi.NewError(fmi.ErrDuplicateName, "register", "x", "")

	c, err := Instantiate(d, Options{Mode: fmi.CoSimulation, Logger: logging.Discard})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, fmi.ErrDuplicateName)
}

func TestGUIDMismatchWarns(t *testing.T) {
	rec := &recorder{}
	_, err := Instantiate(newDecay(), Options{
		Mode: fmi.CoSimulation, GUID: "{other}", ResourceLocation: "file:///tmp", Logger: rec.log,
	})
	require.NoError(t, err)
	assert.True(t, rec.contains("GUID"))
}

func TestDefaultGUIDIsStable(t *testing.T) {
	assert.Equal(t, DefaultGUID("pendulum"), DefaultGUID("pendulum"))
	assert.NotEqual(t, DefaultGUID("pendulum"), DefaultGUID("cartpendulum"))
	assert.True(t, strings.HasPrefix(DefaultGUID("x"), "{"))
}

func TestResourceLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		wantDir  string
		warning  string
	}{
		{"file uri", "file:///opt/fmu/resources", filepath.FromSlash("/opt/fmu/resources"), ""},
		{"file uri with host", "file://localhost/opt/res", filepath.FromSlash("/opt/res"), ""},
		{"other scheme", "http://example.com/res", filepath.FromSlash("/res"), "Bad URL scheme"},
		{"unparsable", "not a uri", "", "Rolled back"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			c, err := Instantiate(newDecay(), Options{
				Mode: fmi.CoSimulation, ResourceLocation: tt.location, Logger: rec.log,
			})
			require.NoError(t, err)

			if tt.wantDir != "" {
				assert.Equal(t, tt.wantDir, c.ResourceDir())
			} else {
				assert.Equal(t, fallbackResources(), c.ResourceDir())
				assert.True(t, strings.HasSuffix(c.ResourceDir(), filepath.Join("..", "..", "resources")))
			}
			if tt.warning != "" {
				assert.True(t, rec.contains(tt.warning), "expected warning %q", tt.warning)
			} else {
				assert.Empty(t, rec.entries)
			}
		})
	}
}

func TestResourceURIRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Instantiate(newDecay(), Options{
		Mode: fmi.CoSimulation, ResourceLocation: ResourceURI(dir), Logger: logging.Discard,
	})
	require.NoError(t, err)
	assert.Equal(t, dir, c.ResourceDir())
	assert.Equal(t, filepath.Join(dir, "data.txt"), c.ResourcePath("data.txt"))
}

func TestLogFiltering(t *testing.T) {
	c, rec := instantiate(t, newDecay(), fmi.CoSimulation)

	c.Log(fmi.OK, "logAll", "enabled")
	c.Log(fmi.OK, "logVerbose", "debug off")
	c.Log(fmi.OK, "logUnknown", "unknown")
	c.SetDebugLogging(true)
	c.Log(fmi.OK, "logVerbose", "debug on")

	var got []string
	for _, e := range rec.entries {
		got = append(got, e.msg)
	}
	assert.Equal(t, []string{"enabled", "unknown", "debug on"}, got)
}

func TestSetDebugLoggingCategories(t *testing.T) {
	c, rec := instantiate(t, newDecay(), fmi.CoSimulation)

	c.SetDebugLogging(false, "logAll")
	c.Log(fmi.OK, "logAll", "hidden")
	assert.Empty(t, rec.entries)

	c.SetDebugLogging(true, "logNope")
	require.Len(t, rec.entries, 1)
	assert.Equal(t, fmi.Warning, rec.entries[0].status)
	_, known := c.CategoryEnabled("logNope")
	assert.False(t, known)
}

func TestDebugCategoryNotListedWarns(t *testing.T) {
	m := &extraDebug{decay: newDecay()}
	rec := &recorder{}
	_, err := Instantiate(m, Options{Mode: fmi.CoSimulation, ResourceLocation: "file:///r", Logger: rec.log})
	require.NoError(t, err)
	assert.True(t, rec.contains("logGhost"))
}

type extraDebug struct{ *decay }

func (m *extraDebug) Info() Info {
	info := m.decay.Info()
	info.DebugCategories = append(info.DebugCategories, "logGhost")
	return info
}

func TestCoSimulationStepping(t *testing.T) {
	d := newDecay()
	c, _ := instantiate(t, d, fmi.CoSimulation)

	_, err := c.DoStep(0, 0.1, true)
	assert.ErrorIs(t, err, fmi.ErrIllegalCall, "step before initialization")

	_, err = c.EnterInitializationMode()
	require.NoError(t, err)
	_, err = c.ExitInitializationMode()
	require.NoError(t, err)

	status, err := c.DoStep(0, 0.1, true)
	require.NoError(t, err)
	assert.Equal(t, fmi.OK, status)
	assert.InDelta(t, 0.95, d.x, 1e-12)
	assert.InDelta(t, 0.1, c.Time(), 1e-12)
	assert.Equal(t, 1, d.postCalls)

	d.stepStatus = fmi.Discard
	status, _ = c.DoStep(0.1, 0.1, true)
	assert.Equal(t, fmi.Discard, status)
	assert.Equal(t, fmi.StepFailed, c.State())

	d.stepStatus = fmi.OK
	status, _ = c.DoStep(0.1, 0.05, true)
	assert.Equal(t, fmi.OK, status)
	assert.Equal(t, fmi.StepCompleted, c.State())
}

func TestModelExchangeCalls(t *testing.T) {
	d := newDecay()
	c, _ := instantiate(t, d, fmi.ModelExchange)

	_, err := c.DoStep(0, 1, true)
	assert.ErrorIs(t, err, fmi.ErrIllegalCall)

	require.Equal(t, 1, c.NumStates())
	_, err = c.SetContinuousStates([]float64{2})
	require.NoError(t, err)

	dx := make([]float64, 1)
	status, err := c.GetDerivatives(dx)
	require.NoError(t, err)
	assert.Equal(t, fmi.OK, status)
	assert.InDelta(t, -1.0, dx[0], 1e-12)
	assert.Equal(t, 1, d.postCalls, "callbacks run around derivative evaluation")

	_, err = c.GetDerivatives(make([]float64, 3))
	assert.ErrorIs(t, err, fmi.ErrIllegalCall)

	assert.Equal(t, fmi.OK, c.SetTime(2.5))
	assert.Equal(t, 2.5, c.Time())
}

func TestGetSetThroughComponent(t *testing.T) {
	c, _ := instantiate(t, newDecay(), fmi.CoSimulation)

	k, _ := c.Registry().FindByName("k")
	require.NoError(t, c.SetReal([]fmi.ValueReference{k.Reference()}, []float64{2}))

	out := make([]float64, 1)
	require.NoError(t, c.GetReal([]fmi.ValueReference{k.Reference()}, out))
	assert.Equal(t, 2.0, out[0])

	err := c.GetReal([]fmi.ValueReference{42}, out)
	assert.True(t, errors.Is(err, fmi.ErrUnknownReference))
}

func TestRebindVariable(t *testing.T) {
	c, _ := instantiate(t, newDecay(), fmi.CoSimulation)

	other := 7.0
	require.NoError(t, c.RebindVariable("k", registry.Ref(&other)))

	k, _ := c.Registry().FindByName("k")
	out := make([]float64, 1)
	require.NoError(t, c.GetReal([]fmi.ValueReference{k.Reference()}, out))
	assert.Equal(t, 7.0, out[0])

	var wrong int32
	err := c.RebindVariable("k", registry.Ref(&wrong))
	assert.True(t, errors.Is(err, fmi.ErrTypeMismatch))
	err = c.RebindVariable("nope", registry.Ref(&other))
	assert.True(t, errors.Is(err, fmi.ErrUnknownVariable))
}

func TestSetupExperimentAndReset(t *testing.T) {
	c, _ := instantiate(t, newDecay(), fmi.CoSimulation)

	c.SetupExperiment(true, 1e-6, 1.5, true, 4)
	start, stop, tol := c.Experiment()
	assert.Equal(t, 1.5, start)
	assert.Equal(t, 4.0, stop)
	assert.Equal(t, 1e-6, tol)
	assert.Equal(t, 1.5, c.Time())

	c.EnterInitializationMode()
	c.Reset()
	assert.Equal(t, fmi.Instantiated, c.State())
}

func TestExportModelDescription(t *testing.T) {
	c, _ := instantiate(t, newDecay(), fmi.CoSimulation)

	path, err := c.ExportModelDescription(t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `guid="{decay}"`)
	assert.Contains(t, text, `name="time"`)
	assert.Contains(t, text, `<Derivatives>`)
	assert.Contains(t, text, `name="logVerbose" description="DebugCategory"`)
}

func TestStandardOverride(t *testing.T) {
	std := fmi.FMI3
	c, err := Instantiate(newDecay(), Options{Mode: fmi.CoSimulation, Logger: logging.Discard, Standard: &std})
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, c.WriteModelDescription(&b))
	assert.Contains(t, b.String(), `fmiVersion="3.0"`)
	assert.Contains(t, b.String(), `<ContinuousStateDerivative`)
}

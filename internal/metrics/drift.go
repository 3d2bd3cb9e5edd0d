package metrics

import "math"

// Drift tracks the largest relative departure of a column from its first
// recorded value. Applied to an energy output it measures how well the
// solver conserves it.
type Drift struct {
	name     string
	column   string
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(column string) *Drift {
	return &Drift{
		name:   column + "_drift",
		column: column,
	}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(t float64, names []string, row []float64) {
	i := column(names, d.column)
	if i < 0 {
		return
	}
	v := row[i]

	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 {
	return d.maxDrift
}

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

// Package metrics reduces the rows recorded during a run to single numbers.
package metrics

// Metric observes every recorded row of a run.
type Metric interface {
	Name() string
	Observe(t float64, names []string, row []float64)
	Value() float64
	Reset()
}

// Set fans rows out to several metrics. Its Observe method fits
// host.Options.Observer.
type Set []Metric

func (s Set) Observe(t float64, names []string, row []float64) {
	for _, m := range s {
		m.Observe(t, names, row)
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

func column(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

package config

import "sort"

func experiment(stop, step float64, solver string) ExperimentConfig {
	return ExperimentConfig{
		Start:      DefaultStart,
		Stop:       stop,
		Step:       step,
		Solver:     solver,
		MaxRetries: DefaultRetries,
	}
}

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": {
			Model: "pendulum", Experiment: experiment(20, 0.01, "rk4"),
			Values: map[string]string{"damping": "0"},
		},
		"driven": {
			Model: "pendulum", Experiment: experiment(20, 0.01, "rk4"),
			Values: map[string]string{"torque": "5", "damping": "0.5"},
		},
		"adaptive": {
			Model: "pendulum", Experiment: ExperimentConfig{
				Stop: 30, Step: 0.05, Tolerance: 1e-8, Solver: "rk45", MaxRetries: DefaultRetries,
			},
			Values: map[string]string{"solver": "rk45", "maxStep": "0.05"},
		},
	},
	"cartpendulum": {
		"swing": {
			Model: "cartpendulum", Experiment: experiment(10, 0.001, "rk4"),
		},
		"linear": {
			Model: "cartpendulum", Experiment: experiment(10, 0.001, "rk4"),
			Values: map[string]string{"approximateOn": "true"},
		},
		"heavy_cart": {
			Model: "cartpendulum", Experiment: experiment(10, 0.001, "rk45"),
			Values:  map[string]string{"M": "10"},
			Outputs: []string{"x", "theta"},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

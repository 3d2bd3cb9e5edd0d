package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fmukit/internal/fmi"
)

const (
	DefaultModel     = "pendulum"
	DefaultStandard  = "2.0"
	DefaultOutputDir = "."
	DefaultDataDir   = ".fmukit/runs"
	DefaultStart     = 0.0
	DefaultStop      = 10.0
	DefaultStep      = 0.01
	DefaultSolver    = "rk4"
	DefaultRetries   = 8
)

type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "yaml"
}

// DetectFormat picks the file format from the extension. Unknown extensions
// are read as YAML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

type Config struct {
	Model       string            `yaml:"model" toml:"model"`
	Standard    string            `yaml:"standard" toml:"standard"`
	OutputDir   string            `yaml:"output_dir" toml:"output_dir"`
	DataDir     string            `yaml:"data_dir" toml:"data_dir"`
	ResourceDir string            `yaml:"resource_dir,omitempty" toml:"resource_dir,omitempty"`
	Log         LogConfig         `yaml:"log" toml:"log"`
	Experiment  ExperimentConfig  `yaml:"experiment" toml:"experiment"`
	Outputs     []string          `yaml:"outputs,omitempty" toml:"outputs,omitempty"`
	Values      map[string]string `yaml:"values,omitempty" toml:"values,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// ExperimentConfig overrides the default experiment of a model.
type ExperimentConfig struct {
	Start      float64 `yaml:"start" toml:"start"`
	Stop       float64 `yaml:"stop" toml:"stop"`
	Step       float64 `yaml:"step" toml:"step"`
	Tolerance  float64 `yaml:"tolerance,omitempty" toml:"tolerance,omitempty"`
	Solver     string  `yaml:"solver" toml:"solver"`
	MaxRetries int     `yaml:"max_retries" toml:"max_retries"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:     DefaultModel,
		Standard:  DefaultStandard,
		OutputDir: DefaultOutputDir,
		DataDir:   DefaultDataDir,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Experiment: ExperimentConfig{
			Start:      DefaultStart,
			Stop:       DefaultStop,
			Step:       DefaultStep,
			Solver:     DefaultSolver,
			MaxRetries: DefaultRetries,
		},
	}
}

// Load reads a YAML or TOML project file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch DetectFormat(path) {
	case FormatTOML:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	switch DetectFormat(path) {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	default:
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := fmi.ParseStandard(c.Standard); err != nil {
		return err
	}
	e := c.Experiment
	switch {
	case e.Step <= 0:
		return fmt.Errorf("experiment step must be positive, got %g", e.Step)
	case e.Stop <= e.Start:
		return fmt.Errorf("experiment stop %g must be after start %g", e.Stop, e.Start)
	case e.Tolerance < 0:
		return fmt.Errorf("experiment tolerance must not be negative, got %g", e.Tolerance)
	case e.MaxRetries < 0:
		return fmt.Errorf("max_retries must not be negative, got %d", e.MaxRetries)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// FMIStandard returns the configured standard revision.
func (c *Config) FMIStandard() fmi.Standard {
	s, _ := fmi.ParseStandard(c.Standard)
	return s
}

// Apply copies the experiment and values of a preset over c. Values are
// merged, preset entries winning.
func (c *Config) Apply(p *Config) {
	c.Model = p.Model
	c.Experiment = p.Experiment
	if len(p.Outputs) > 0 {
		c.Outputs = append([]string(nil), p.Outputs...)
	}
	if len(p.Values) > 0 && c.Values == nil {
		c.Values = make(map[string]string, len(p.Values))
	}
	for k, v := range p.Values {
		c.Values[k] = v
	}
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gwbsim/internal/cosmology"
	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/integrators"
	"github.com/san-kum/gwbsim/internal/interp"
	"github.com/san-kum/gwbsim/internal/physics"
	"github.com/san-kum/gwbsim/internal/population"
	"github.com/san-kum/gwbsim/internal/sfh"
	"github.com/san-kum/gwbsim/internal/sim"
)

const (
	DefaultFrequencyBins = 50
	DefaultLogFMin       = -5.0
	DefaultLogFMax       = 0.0
	DefaultEpochBins     = 20
	DefaultMaxZ          = 8.0
	DefaultCosmoSteps    = 20000
	DefaultTablePoints   = 10000
	DefaultDataDir       = "data"
)

type Config struct {
	Mode          string                `yaml:"mode" json:"mode"`
	Bins          BinsConfig            `yaml:"bins" json:"bins"`
	SFH           sfh.Options           `yaml:"sfh" json:"sfh"`
	Cosmology     CosmologyConfig       `yaml:"cosmology" json:"cosmology"`
	Tables        TablesConfig          `yaml:"tables" json:"tables"`
	Normalization physics.Normalization `yaml:"normalization" json:"normalization"`
	Components    sim.Components        `yaml:"components" json:"components"`
	Interpolation InterpolationConfig   `yaml:"interpolation" json:"interpolation"`
	Population    PopulationConfig      `yaml:"population" json:"population"`
	Output        OutputConfig          `yaml:"output" json:"output"`
	Workers       int                   `yaml:"workers" json:"workers"`
	LogLevel      string                `yaml:"log_level" json:"log_level"`
}

type BinsConfig struct {
	Frequency FrequencyBins `yaml:"frequency" json:"frequency"`
	Epoch     EpochBins     `yaml:"epoch" json:"epoch"`
}

// FrequencyBins are logarithmic in received GW frequency (Hz).
type FrequencyBins struct {
	Count  int     `yaml:"count" json:"count"`
	LogMin float64 `yaml:"log_min" json:"log_min"`
	LogMax float64 `yaml:"log_max" json:"log_max"`
}

type EpochBins struct {
	Count int     `yaml:"count" json:"count"`
	MaxZ  float64 `yaml:"max_z" json:"max_z"`
}

type CosmologyConfig struct {
	cosmology.Params `yaml:",inline"`
	Integrator       string `yaml:"integrator" json:"integrator"`
	Steps            int    `yaml:"steps" json:"steps"`
}

// TablesConfig points at a precomputed age-redshift table. With an empty
// path the table is generated from the cosmology with Points rows.
type TablesConfig struct {
	Redshift string `yaml:"redshift" json:"redshift"`
	Points   int    `yaml:"points" json:"points"`
}

type InterpolationConfig struct {
	OutOfRange string `yaml:"out_of_range" json:"out_of_range"`
}

type PopulationConfig struct {
	Path   string `yaml:"path" json:"path"`
	Format string `yaml:"format" json:"format"`
}

type OutputConfig struct {
	Dir string `yaml:"dir" json:"dir"`
	Tag string `yaml:"tag" json:"tag"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode: string(dynamo.ModeRedshift),
		Bins: BinsConfig{
			Frequency: FrequencyBins{Count: DefaultFrequencyBins, LogMin: DefaultLogFMin, LogMax: DefaultLogFMax},
			Epoch:     EpochBins{Count: DefaultEpochBins, MaxZ: DefaultMaxZ},
		},
		SFH: sfh.Options{Model: "md14", Metallicity: sfh.DefaultMetallicity},
		Cosmology: CosmologyConfig{
			Params:     cosmology.Planck18(),
			Integrator: "rk4",
			Steps:      DefaultCosmoSteps,
		},
		Tables:        TablesConfig{Points: DefaultTablePoints},
		Normalization: physics.DefaultNormalization(),
		Components:    sim.AllComponents(),
		Interpolation: InterpolationConfig{OutOfRange: interp.Reject.String()},
		Population:    PopulationConfig{Format: population.FormatCSV},
		Output:        OutputConfig{Dir: DefaultDataDir},
		LogLevel:      "info",
	}
}

// Load reads a yaml file over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := Decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOver reads a yaml file over a copy of base, e.g. a preset.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Decode layers yaml data over cfg. Keys absent from data keep their
// current values.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every inconsistency at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{dynamo.ErrInvalidConfig}, args...)...))
	}

	if _, err := dynamo.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	f := c.Bins.Frequency
	if f.Count < 1 {
		bad("bins.frequency.count must be positive, got %d", f.Count)
	}
	if !(f.LogMax > f.LogMin) {
		bad("bins.frequency.log_max (%g) must exceed log_min (%g)", f.LogMax, f.LogMin)
	}
	e := c.Bins.Epoch
	if e.Count < 1 {
		bad("bins.epoch.count must be positive, got %d", e.Count)
	}
	if !(e.MaxZ > 0) {
		bad("bins.epoch.max_z must be positive, got %g", e.MaxZ)
	}

	if err := c.Cosmology.Params.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := integrators.New(c.Cosmology.Integrator); err != nil {
		errs = append(errs, err)
	}
	if c.Cosmology.Steps < 1 {
		bad("cosmology.steps must be positive, got %d", c.Cosmology.Steps)
	}
	if c.Tables.Redshift == "" && c.Tables.Points < 2 {
		bad("tables.points must be at least 2 when no redshift table is given, got %d", c.Tables.Points)
	}

	if err := c.Normalization.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !c.Components.Bulk && !c.Components.Birth && !c.Components.Merger {
		bad("components: at least one of bulk, birth, merger must be enabled")
	}
	if _, err := interp.ParsePolicy(c.Interpolation.OutOfRange); err != nil {
		errs = append(errs, err)
	}
	if err := c.validateSFH(); err != nil {
		errs = append(errs, err)
	}
	switch c.Population.Format {
	case "", population.FormatCSV, population.FormatSeBa:
	default:
		bad("population.format %q (want csv or seba)", c.Population.Format)
	}
	if c.Workers < 0 {
		bad("workers must be >= 0, got %d", c.Workers)
	}
	if c.Output.Dir == "" {
		bad("output.dir must be set")
	}

	return errors.Join(errs...)
}

func (c *Config) validateSFH() error {
	switch c.SFH.Model {
	case "table":
		if c.SFH.Table == "" {
			return fmt.Errorf("%w: sfh.table must be set for the table model", dynamo.ErrInvalidConfig)
		}
		if _, ok := sfh.Metallicities[c.SFH.Metallicity]; !ok {
			return fmt.Errorf("%w: sfh.metallicity %q", dynamo.ErrUnknownModel, c.SFH.Metallicity)
		}
		return nil
	case "constant":
		if c.SFH.Constant < 0 {
			return fmt.Errorf("%w: sfh.constant must be >= 0, got %g", dynamo.ErrInvalidConfig, c.SFH.Constant)
		}
		return nil
	}
	for _, name := range sfh.Names() {
		if name == c.SFH.Model {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (available: %v)", dynamo.ErrUnknownModel, c.SFH.Model, sfh.Names())
}

func (c *Config) Policy() interp.Policy {
	p, _ := interp.ParsePolicy(c.Interpolation.OutOfRange)
	return p
}

func (c *Config) FrequencyAxis() (grid.Axis, error) {
	f := c.Bins.Frequency
	return grid.LogAxis(f.Count, f.LogMin, f.LogMax)
}

// EngineOptions maps the configuration onto the binning engine.
func (c *Config) EngineOptions() (sim.Options, error) {
	f, err := c.FrequencyAxis()
	if err != nil {
		return sim.Options{}, err
	}
	return sim.Options{
		Mode:      dynamo.Mode(c.Mode),
		Epochs:    c.Bins.Epoch.Count,
		MaxZ:      c.Bins.Epoch.MaxZ,
		Frequency: f,
		Norm:      c.Normalization,
		Include:   c.Components,
		Workers:   c.Workers,
	}, nil
}

package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gwbsim/internal/config"
	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/experiment"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/population"
	"github.com/san-kum/gwbsim/internal/sim"
	"github.com/san-kum/gwbsim/internal/storage"
	"github.com/san-kum/gwbsim/internal/store"
)

// Scenario is a yaml list of runs executed in sequence, typically to
// compare star formation histories or metallicities on one catalog.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
	// Matrix appends one step per SFH and metallicity combination.
	Matrix *Matrix `yaml:"matrix"`
}

// ScenarioStep overrides the base configuration for one run.
type ScenarioStep struct {
	Name        string    `yaml:"name"`
	Preset      string    `yaml:"preset"`
	SFH         string    `yaml:"sfh"`
	Metallicity string    `yaml:"metallicity"`
	Mode        string    `yaml:"mode"`
	Tag         string    `yaml:"tag"`
	Config      yaml.Node `yaml:"config"`
}

type Matrix struct {
	SFH         []string `yaml:"sfh"`
	Metallicity []string `yaml:"metallicity"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: scenario: %v", dynamo.ErrInvalidConfig, err)
	}
	sc.Steps = append(sc.Steps, sc.Matrix.expand()...)
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no steps", dynamo.ErrInvalidConfig, sc.Name)
	}
	return &sc, nil
}

func (m *Matrix) expand() []ScenarioStep {
	if m == nil {
		return nil
	}
	metals := m.Metallicity
	if len(metals) == 0 {
		metals = []string{""}
	}
	var steps []ScenarioStep
	for _, model := range m.SFH {
		for _, z := range metals {
			name := model
			if z != "" {
				name += "/" + z
			}
			steps = append(steps, ScenarioStep{Name: name, SFH: model, Metallicity: z, Tag: name})
		}
	}
	return steps
}

// Apply returns a copy of base with the step's overrides.
func (s ScenarioStep) Apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	if s.Preset != "" {
		apply, ok := config.Presets[s.Preset]
		if !ok {
			return nil, fmt.Errorf("%w: unknown preset %q", dynamo.ErrInvalidConfig, s.Preset)
		}
		apply(&cfg)
	}
	if !s.Config.IsZero() {
		data, err := yaml.Marshal(&s.Config)
		if err != nil {
			return nil, err
		}
		if err := config.Decode(data, &cfg); err != nil {
			return nil, fmt.Errorf("step config: %w", err)
		}
	}
	if s.SFH != "" {
		cfg.SFH.Model = s.SFH
	}
	if s.Metallicity != "" {
		cfg.SFH.Metallicity = s.Metallicity
	}
	if s.Mode != "" {
		cfg.Mode = s.Mode
	}
	if s.Tag != "" {
		cfg.Output.Tag = s.Tag
	}
	return &cfg, nil
}

// StepResult summarises one executed step.
type StepResult struct {
	Name   string
	RunID  string
	SFH    string
	Omega  float64 // summed over kinds and cells
	Result *sim.Result
}

// Runner executes scenarios. Catalogs are loaded once per path.
type Runner struct {
	Base  *config.Config
	Store *storage.Store // nil skips persistence
	Index *store.RunIndex
	Log   *logrus.Entry

	catalogs map[string]*population.Catalog
}

func (r *Runner) catalog(cfg *config.Config) (*population.Catalog, error) {
	key := cfg.Population.Format + ":" + cfg.Population.Path
	if c, ok := r.catalogs[key]; ok {
		return c, nil
	}
	if cfg.Population.Path == "" {
		return nil, fmt.Errorf("%w: population.path is not set", dynamo.ErrInvalidConfig)
	}
	c, err := population.Load(cfg.Population.Path, cfg.Population.Format)
	if err != nil {
		return nil, err
	}
	if r.catalogs == nil {
		r.catalogs = make(map[string]*population.Catalog)
	}
	r.catalogs[key] = c
	return c, nil
}

// Run executes every step and stops at the first failure, returning the
// steps completed so far.
func (r *Runner) Run(ctx context.Context, sc *Scenario) ([]StepResult, error) {
	log := r.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		stepLog := log.WithFields(logrus.Fields{"scenario": sc.Name, "step": name})
		stepLog.Infof("running step %d/%d", i+1, len(sc.Steps))

		cfg, err := step.Apply(r.Base)
		if err != nil {
			return results, fmt.Errorf("step %s: %w", name, err)
		}
		exp := experiment.New(cfg, stepLog)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %s setup: %w", name, err)
		}
		c, err := r.catalog(cfg)
		if err != nil {
			return results, fmt.Errorf("step %s: %w", name, err)
		}
		exp.SetCatalog(c)

		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %s run: %w", name, err)
		}

		sr := StepResult{Name: name, SFH: exp.SFHName(), Result: res}
		for _, k := range grid.Kinds {
			o, _ := res.Grid.Totals(k)
			sr.Omega += o
		}
		if r.Store != nil {
			if sr.RunID, err = exp.Persist(ctx, r.Store, r.Index, res); err != nil {
				return results, fmt.Errorf("step %s save: %w", name, err)
			}
		}
		results = append(results, sr)
	}
	return results, nil
}

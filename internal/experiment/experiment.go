// Package experiment assembles one binning run from a configuration: it
// builds the cosmology and lookup tables, loads the catalog, runs the
// engine and persists the result.
package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/gwbsim/internal/config"
	"github.com/san-kum/gwbsim/internal/cosmology"
	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/integrators"
	"github.com/san-kum/gwbsim/internal/interp"
	"github.com/san-kum/gwbsim/internal/metrics"
	"github.com/san-kum/gwbsim/internal/population"
	"github.com/san-kum/gwbsim/internal/sfh"
	"github.com/san-kum/gwbsim/internal/sim"
	"github.com/san-kum/gwbsim/internal/storage"
	"github.com/san-kum/gwbsim/internal/store"
)

var errNotSetup = errors.New("experiment not set up")

type Experiment struct {
	cfg      *config.Config
	log      *logrus.Entry
	cosmo    *cosmology.Cosmology
	redshift *interp.Redshift
	model    sfh.Model
	engine   *sim.Engine
	catalog  *population.Catalog
}

func New(cfg *config.Config, log *logrus.Entry) *Experiment {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Experiment{cfg: cfg, log: log}
}

// Setup validates the configuration and builds every table the engine
// reads. The catalog is loaded separately.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	policy := e.cfg.Policy()

	integ, err := integrators.New(e.cfg.Cosmology.Integrator)
	if err != nil {
		return err
	}
	maxZ := e.cfg.Bins.Epoch.MaxZ
	if e.cosmo, err = cosmology.New(e.cfg.Cosmology.Params, integ, maxZ, e.cfg.Cosmology.Steps); err != nil {
		return fmt.Errorf("cosmology: %w", err)
	}
	e.log.WithFields(logrus.Fields{
		"h0":         e.cfg.Cosmology.H0,
		"omega_m":    e.cfg.Cosmology.OmegaM,
		"age_myr":    e.cosmo.AgeNow(),
		"max_z":      maxZ,
		"integrator": e.cfg.Cosmology.Integrator,
	}).Debug("cosmology tabulated")

	if path := e.cfg.Tables.Redshift; path != "" {
		e.redshift, err = interp.LoadRedshift(path, policy)
	} else {
		e.redshift, err = interp.FromCosmology(e.cosmo, e.cfg.Tables.Points, policy)
	}
	if err != nil {
		return fmt.Errorf("age-redshift table: %w", err)
	}

	if e.model, err = sfh.New(e.cfg.SFH, policy); err != nil {
		return err
	}
	opts, err := e.cfg.EngineOptions()
	if err != nil {
		return err
	}
	e.engine, err = sim.New(opts, e.cosmo, e.redshift, sfh.NewInterpolator(e.model, e.redshift))
	if err != nil {
		return err
	}
	e.engine.SetLogger(e.log)
	return nil
}

// LoadCatalog reads the configured population file.
func (e *Experiment) LoadCatalog() error {
	if e.cfg.Population.Path == "" {
		return fmt.Errorf("%w: population.path is not set", dynamo.ErrInvalidConfig)
	}
	c, err := population.Load(e.cfg.Population.Path, e.cfg.Population.Format)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	e.SetCatalog(c)
	return nil
}

// SetCatalog uses an already loaded catalog, e.g. one shared by a sweep.
func (e *Experiment) SetCatalog(c *population.Catalog) {
	e.catalog = c
	fields := logrus.Fields{"rows": c.Rows, "systems": len(c.Systems)}
	for _, name := range c.Skipped.Names() {
		fields[name] = c.Skipped.Get(name)
	}
	e.log.WithFields(fields).Info("catalog loaded")
}

// Engine returns the configured engine for adding observers.
func (e *Experiment) Engine() *sim.Engine    { return e.engine }
func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) SFHName() string {
	if e.model == nil {
		return e.cfg.SFH.Model
	}
	return e.model.Name()
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.engine == nil || e.catalog == nil {
		return nil, errNotSetup
	}
	res, err := e.engine.Run(ctx, e.catalog.Systems)
	if err != nil {
		return nil, err
	}
	res.Diagnostics.Add(metrics.SkippedRows, e.catalog.SkippedRows())

	if n := res.Diagnostics.Get(metrics.Clamped); n > 0 {
		e.log.WithField(metrics.Clamped, n).Warn("interpolation queries clamped to table edges")
	}
	return res, nil
}

// Persist saves res under st and indexes it in idx when idx is non-nil.
func (e *Experiment) Persist(ctx context.Context, st *storage.Store, idx *store.RunIndex, res *sim.Result) (string, error) {
	meta := storage.NewMetadata(e.cfg, e.SFHName(), e.cfg.Population.Path, res)
	id, err := st.Save(meta, res)
	if err != nil {
		return "", err
	}
	meta.ID = id
	if idx != nil {
		if err := idx.Record(ctx, meta); err != nil {
			return id, fmt.Errorf("index run %s: %w", id, err)
		}
	}
	e.log.WithField("run", id).Info("run saved")
	return id, nil
}

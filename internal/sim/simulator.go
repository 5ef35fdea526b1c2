package sim

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/gwbsim/internal/cosmology"
	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/interp"
	"github.com/san-kum/gwbsim/internal/metrics"
	"github.com/san-kum/gwbsim/internal/physics"
	"github.com/san-kum/gwbsim/internal/population"
	"github.com/san-kum/gwbsim/internal/sfh"
)

// Engine bins the gravitational-wave emission of a catalog of binaries
// into an (epoch, frequency) grid. Observers and the logger must be set
// before the first Run.
type Engine struct {
	opts      Options
	redshift  *interp.Redshift
	sfr       *sfh.Interpolator
	epochs    []Epoch
	zAxis     grid.Axis
	pool      *GridPool
	observers []dynamo.Observer
	log       *logrus.Entry
}

func New(opts Options, c *cosmology.Cosmology, r *interp.Redshift, sfr *sfh.Interpolator) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	epochs, zAxis, err := BuildEpochs(opts.Mode, opts.Epochs, opts.MaxZ, c, r)
	if err != nil {
		return nil, err
	}

	return &Engine{
		opts:     opts,
		redshift: r,
		sfr:      sfr,
		epochs:   epochs,
		zAxis:    zAxis,
		pool:     NewGridPool(zAxis, opts.Frequency),
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}, nil
}

func (e *Engine) SetLogger(l *logrus.Entry)     { e.log = l }
func (e *Engine) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Options() Options     { return e.opts }
func (e *Engine) Epochs() []Epoch      { return e.epochs }
func (e *Engine) EpochAxis() grid.Axis { return e.zAxis }

// Window is the band and history a catalog system must reach to deposit.
func (e *Engine) Window() population.Window {
	w := population.Window{
		FLow:  e.opts.Frequency.Lo(),
		FHigh: e.opts.Frequency.Hi(),
		MaxZ:  e.opts.MaxZ,
	}
	for _, ep := range e.epochs {
		w.MaxTime = max(w.MaxTime, ep.SinceMaxZ)
	}
	return w
}

// Run bins every system at every epoch. Systems that cannot reach the
// frequency band are dropped first and counted as unreachable.
func (e *Engine) Run(ctx context.Context, systems []population.BinarySystem) (*Result, error) {
	start := time.Now()
	workers := dynamo.Workers(e.opts.Workers)
	clampsBefore := e.clamps()

	kept, dropped := population.Reachable(systems, e.Window(), workers)
	e.log.WithFields(logrus.Fields{
		"systems":     len(systems),
		"unreachable": dropped,
		"epochs":      len(e.epochs),
		"freq_bins":   e.opts.Frequency.Len(),
		"workers":     workers,
		"mode":        e.opts.Mode,
	}).Info("binning catalog")

	g, tally, err := e.fanOut(ctx, kept, workers)
	if err != nil {
		return nil, err
	}
	tally.Add(metrics.Unreachable, int64(dropped))
	tally.Add(metrics.Clamped, e.clamps()-clampsBefore)

	res := &Result{
		Grid:        g,
		Epochs:      e.epochs,
		Diagnostics: tally,
		Systems:     len(systems),
		Binned:      len(kept),
		Elapsed:     time.Since(start),
	}
	e.log.WithFields(logrus.Fields{
		"elapsed":     res.Elapsed.Round(time.Millisecond),
		"diagnostics": tally.String(),
	}).Info("binning done")
	return res, nil
}

// clamps sums the clamp counters of every table the engine queries.
func (e *Engine) clamps() int64 {
	return e.redshift.Clamps() + e.sfr.Clamps()
}

// deposit adds the contribution of b at epoch ep to g. The emitted range
// runs from the birth frequency to contact, or to wherever the inspiral
// has reached after the time available since MaxZ.
func (e *Engine) deposit(b population.BinarySystem, ep Epoch, g *grid.Grid, tally *metrics.Tally) error {
	avail := ep.SinceMaxZ - b.T0
	if avail <= 0 {
		tally.Inc(metrics.NotFormed)
		return nil
	}

	fs := b.BirthFrequency()
	fc := b.ContactFrequency()
	merged := b.Merges(avail)
	fe, total := fc, b.DtMax
	if !merged {
		f, err := physics.FrequencyAfter(fs, avail, b.K)
		if err != nil || f >= fc {
			merged = true
		} else {
			fe, total = f, avail
		}
	}

	zp := 1 + ep.Z
	spans := e.opts.Frequency.Split(fs/zp, fe/zp)
	if len(spans) == 0 {
		tally.Inc(metrics.OutsideFrequency)
		return nil
	}

	for _, s := range spans {
		kind := grid.Bulk
		switch {
		case s.First:
			kind = grid.Birth
		case s.Last:
			kind = grid.Merger
		}
		if !e.opts.Include.Enabled(kind) {
			continue
		}

		lo, hi := s.Lo*zp, s.Hi*zp
		if s.First {
			lo = fs
		}
		tLo := physics.InspiralTime(fs, lo, b.K)
		var tHi float64
		if s.Last {
			hi, tHi = fe, total
		} else {
			tHi = physics.InspiralTime(fs, hi, b.K)
		}
		if tHi <= tLo {
			tally.Inc(metrics.EmptySegment)
			continue
		}

		delay := tLo
		switch {
		case kind == grid.Bulk:
			delay = tHi
		case kind == grid.Merger && merged:
			delay = b.DtMax
		}
		psi, err := e.sfr.Representative(ep.Age, b.T0+delay)
		if err != nil {
			return err
		}

		d := physics.Deposit{
			Psi:       psi,
			ChirpMass: b.ChirpMass,
			Z:         ep.Z,
			Chi:       ep.Chi,
			DChi:      ep.DChi,
			Centre:    e.opts.Frequency.Centres[s.Bin],
			Width:     e.opts.Frequency.Width(s.Bin),
			LoEmit:    lo,
			HiEmit:    hi,
			Time:      tHi - tLo,
		}
		g.Add(kind, ep.Index, s.Bin, e.opts.Norm.Omega(d), e.opts.Norm.Count(d))
	}
	return nil
}

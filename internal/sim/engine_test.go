package sim

import (
	"context"
	"math"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/interp"
	"github.com/san-kum/gwbsim/internal/metrics"
	"github.com/san-kum/gwbsim/internal/physics"
	"github.com/san-kum/gwbsim/internal/population"
	"github.com/san-kum/gwbsim/internal/sfh"
)

func run(e *Engine, systems []population.BinarySystem) *Result {
	res, err := e.Run(context.Background(), systems)
	Expect(err).NotTo(HaveOccurred())
	return res
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func expectCellsClose(got, want *grid.Grid, rel float64) {
	for _, k := range grid.Kinds {
		for _, cells := range []struct{ got, want []float64 }{
			{got.OmegaCells(k), want.OmegaCells(k)},
			{got.CountCells(k), want.CountCells(k)},
		} {
			tol := rel * maxAbs(cells.want)
			Expect(cells.got).To(HaveLen(len(cells.want)))
			for c := range cells.want {
				Expect(cells.got[c]).To(BeNumerically("~", cells.want[c], tol), "kind %s cell %d", k, c)
			}
		}
	}
}

func nonZeroCells(g *grid.Grid) int {
	n := 0
	for _, k := range grid.Kinds {
		for c, v := range g.OmegaCells(k) {
			if v != 0 || g.CountCells(k)[c] != 0 {
				n++
			}
		}
	}
	return n
}

var _ = Describe("Engine", func() {
	Context("with an empty catalog", func() {
		It("returns all-zero grids", func() {
			res := run(newEngine(baseOptions(), "md14"), nil)
			Expect(res.Systems).To(Equal(0))
			Expect(res.Grid.NZ()).To(Equal(8))
			Expect(res.Grid.NF()).To(Equal(20))
			Expect(nonZeroCells(res.Grid)).To(Equal(0))
		})
	})

	Context("with a synthetic population", func() {
		var systems []population.BinarySystem

		BeforeEach(func() {
			systems = syntheticCatalog(40)
		})

		It("never deposits negative or non-finite values", func() {
			res := run(newEngine(baseOptions(), "md14"), systems)
			for _, k := range grid.Kinds {
				for c, v := range res.Grid.OmegaCells(k) {
					n := res.Grid.CountCells(k)[c]
					Expect(v).To(BeNumerically(">=", 0))
					Expect(n).To(BeNumerically(">=", 0))
					Expect(math.IsInf(v, 0) || math.IsNaN(v)).To(BeFalse())
				}
			}
			omega, _ := res.Grid.Totals(grid.Bulk)
			Expect(omega).To(BeNumerically(">", 0))
		})

		It("equals the sum of single-system runs", func() {
			e := newEngine(baseOptions(), "md14")
			full := run(e, systems)

			sum := full.Grid.NewLike()
			for _, b := range systems {
				Expect(sum.Merge(run(e, []population.BinarySystem{b}).Grid)).To(Succeed())
			}
			expectCellsClose(full.Grid, sum, 1e-9)
		})

		It("does not depend on the worker count", func() {
			serial := run(newEngine(baseOptions(), "md14"), systems)

			opts := baseOptions()
			opts.Workers = 4
			parallel := run(newEngine(opts, "md14"), systems)

			expectCellsClose(parallel.Grid, serial.Grid, 1e-12)
			Expect(parallel.Diagnostics.Snapshot()).To(Equal(serial.Diagnostics.Snapshot()))
		})

		It("accounts for every system and epoch", func() {
			e := newEngine(baseOptions(), "md14")
			res := run(e, systems)
			Expect(res.Systems).To(Equal(len(systems)))
			Expect(res.Binned + int(res.Diagnostics.Get(metrics.Unreachable))).To(Equal(len(systems)))
		})

		It("reports progress once per binned system", func() {
			opts := baseOptions()
			opts.Workers = 3
			e := newEngine(opts, "md14")
			var calls, last atomic.Int64
			e.AddObserver(dynamo.ObserverFunc(func(done, total int) {
				calls.Add(1)
				if done == total {
					last.Store(int64(total))
				}
			}))
			res := run(e, systems)
			Expect(calls.Load()).To(Equal(int64(res.Binned)))
			Expect(last.Load()).To(Equal(int64(res.Binned)))
		})

		It("only fills the selected components", func() {
			opts := baseOptions()
			opts.Include = Components{Bulk: true}
			res := run(newEngine(opts, "md14"), systems)

			for _, k := range []grid.Kind{grid.Birth, grid.Merger} {
				omega, n := res.Grid.Totals(k)
				Expect(omega).To(BeZero())
				Expect(n).To(BeZero())
			}
			all := run(newEngine(baseOptions(), "md14"), systems)
			expectCellsClose(
				onlyKind(res.Grid, grid.Bulk),
				onlyKind(all.Grid, grid.Bulk), 1e-12)
		})

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := newEngine(baseOptions(), "md14").Run(ctx, systems)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Context("with a trajectory crossing one frequency edge", func() {
		It("splits the available time exactly between the two bins", func() {
			f, err := grid.LogAxis(2, -4, -2)
			Expect(err).NotTo(HaveOccurred())
			opts := baseOptions()
			opts.Epochs, opts.MaxZ, opts.Frequency = 1, 0.2, f
			e := newEngine(opts, "constant")
			ep := e.Epochs()[0]
			zp := 1 + ep.Z

			probe, err := population.New(0, 0.6, 0.6, 5e-4*zp/2)
			Expect(err).NotTo(HaveOccurred())
			fs := probe.BirthFrequency()
			t0 := ep.SinceMaxZ - physics.InspiralTime(fs, 3e-3*zp, probe.K)
			Expect(t0).To(BeNumerically(">", 0))
			b, err := population.New(t0, 0.6, 0.6, probe.Nu0)
			Expect(err).NotTo(HaveOccurred())

			res := run(e, []population.BinarySystem{b})
			avail := ep.SinceMaxZ - t0
			Expect(b.Merges(avail)).To(BeFalse())

			unit := physics.ShellVolume(ep.Chi, ep.DChi) * sfh.DefaultConstantRate *
				physics.YearsPerMyr / opts.Norm.Mass
			tBirth := physics.InspiralTime(fs, f.Edges[1]*zp, b.K)

			Expect(res.Grid.Count(grid.Birth, 0, 0)).To(BeNumerically("~", unit*tBirth, 1e-9*unit*avail))
			Expect(res.Grid.Count(grid.Merger, 0, 1)).To(BeNumerically("~", unit*(avail-tBirth), 1e-9*unit*avail))
			Expect(res.Grid.TotalCount(0, 0) + res.Grid.TotalCount(0, 1)).To(BeNumerically("~", unit*avail, 1e-12*unit*avail))
			Expect(nonZeroCells(res.Grid)).To(Equal(2))
		})
	})

	Context("with a single slowly inspiralling system", func() {
		var (
			opts Options
			b    population.BinarySystem
		)

		BeforeEach(func() {
			opts = baseOptions()
			opts.Epochs, opts.MaxZ = 4, 2
			eps := newEngine(opts, "md14").Epochs()

			var err error
			b, err = population.New((eps[0].SinceMaxZ+eps[1].SinceMaxZ)/2, 0.3, 0.3, 1e-5)
			Expect(err).NotTo(HaveOccurred())
		})

		It("deposits its whole weight into one birth cell", func() {
			e := newEngine(opts, "md14")
			ep := e.Epochs()[0]
			res := run(e, []population.BinarySystem{b})

			j := opts.Frequency.Index(b.BirthFrequency() / (1 + ep.Z))
			Expect(j).To(BeNumerically(">=", 0))
			Expect(nonZeroCells(res.Grid)).To(Equal(1))
			Expect(res.Grid.Omega(grid.Birth, 0, j)).To(BeNumerically(">", 0))

			psi, err := e.sfr.Representative(ep.Age, b.T0)
			Expect(err).NotTo(HaveOccurred())
			avail := ep.SinceMaxZ - b.T0
			want := physics.ShellVolume(ep.Chi, ep.DChi) * psi * avail * physics.YearsPerMyr / opts.Norm.Mass
			Expect(res.Grid.Count(grid.Birth, 0, j)).To(BeNumerically("~", want, 1e-9*want))
			Expect(res.Diagnostics.Get(metrics.NotFormed)).To(Equal(int64(3)))
		})

		It("scales with the star formation rate at its formation epoch", func() {
			a := newEngine(opts, "md14")
			c := newEngine(opts, "sfh2")
			ra := run(a, []population.BinarySystem{b})
			rc := run(c, []population.BinarySystem{b})

			ep := a.Epochs()[0]
			zf, err := redshift.Z(ep.Age - b.T0)
			Expect(err).NotTo(HaveOccurred())
			pa, err := a.sfr.At(zf)
			Expect(err).NotTo(HaveOccurred())
			pc, err := c.sfr.At(zf)
			Expect(err).NotTo(HaveOccurred())

			oa, _ := ra.Grid.Totals(grid.Birth)
			oc, _ := rc.Grid.Totals(grid.Birth)
			Expect(oa / oc).To(BeNumerically("~", pa/pc, 1e-9*pa/pc))
		})
	})

	Context("with an SFRD table shorter than the epoch range", func() {
		const shortTable = "redshift,0,1,2,3,4,5\n0,0.01,0.01,0.01,0.01,0.01,0.01\n2,0.03,0.03,0.03,0.03,0.03,0.03\n"

		engineWith := func(policy interp.Policy) *Engine {
			m, err := sfh.ReadTable(strings.NewReader(shortTable), "short", "z02", policy)
			Expect(err).NotTo(HaveOccurred())
			e, err := New(baseOptions(), cosmo, redshift, sfh.NewInterpolator(m, redshift))
			Expect(err).NotTo(HaveOccurred())
			e.SetLogger(quietLogger())
			return e
		}

		It("counts clamped rate lookups", func() {
			res := run(engineWith(interp.Clamp), syntheticCatalog(10))
			Expect(res.Diagnostics.Get(metrics.Clamped)).To(BeNumerically(">", 0))
			o, _ := res.Grid.Totals(grid.Bulk)
			Expect(o).To(BeNumerically(">", 0))
		})

		It("aborts under the reject policy", func() {
			_, err := engineWith(interp.Reject).Run(context.Background(), syntheticCatalog(10))
			Expect(err).To(MatchError(dynamo.ErrOutOfRange))
		})
	})

	Context("in time mode", func() {
		It("bins a population without invalid cells", func() {
			opts := baseOptions()
			opts.Mode = dynamo.ModeTime
			res := run(newEngine(opts, "md14"), syntheticCatalog(20))
			for _, k := range grid.Kinds {
				for _, v := range res.Grid.OmegaCells(k) {
					Expect(v).To(BeNumerically(">=", 0))
					Expect(math.IsNaN(v)).To(BeFalse())
				}
			}
			Expect(res.Grid.Z.Hi()).To(BeNumerically(">", 10000))
		})
	})
})

func onlyKind(g *grid.Grid, k grid.Kind) *grid.Grid {
	out := g.NewLike()
	Expect(out.SetCells(k, g.OmegaCells(k), g.CountCells(k))).To(Succeed())
	return out
}

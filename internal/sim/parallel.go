package sim

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/metrics"
	"github.com/san-kum/gwbsim/internal/population"
)

// fanOut splits systems into contiguous chunks, bins each chunk into a
// private grid and merges the partial grids in chunk order, so the result
// does not depend on scheduling.
func (e *Engine) fanOut(ctx context.Context, systems []population.BinarySystem, workers int) (*grid.Grid, *metrics.Tally, error) {
	chunks := dynamo.Partition(len(systems), workers)
	partials := make([]*grid.Grid, len(chunks))
	tallies := make([]*metrics.Tally, len(chunks))

	var done atomic.Int64
	total := len(systems)

	eg, gctx := errgroup.WithContext(ctx)
	for w, c := range chunks {
		w, c := w, c
		partials[w] = e.pool.Get()
		tallies[w] = metrics.NewTally()
		eg.Go(func() error {
			for i := c[0]; i < c[1]; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for _, ep := range e.epochs {
					if err := e.deposit(systems[i], ep, partials[w], tallies[w]); err != nil {
						return fmt.Errorf("system %d at epoch %d: %w", i, ep.Index, err)
					}
				}
				n := int(done.Add(1))
				for _, o := range e.observers {
					o.OnSystem(n, total)
				}
			}
			return nil
		})
	}

	err := eg.Wait()
	if err == nil {
		err = ctx.Err()
	}
	g := grid.New(e.zAxis, e.opts.Frequency)
	tally := metrics.NewTally()
	for w := range partials {
		if err == nil {
			if mErr := g.Merge(partials[w]); mErr != nil {
				err = mErr
			}
			tally.Merge(tallies[w])
		}
		e.pool.Put(partials[w])
	}
	if err != nil {
		return nil, nil, err
	}
	return g, tally, nil
}

package sim

import (
	"sync"

	"github.com/san-kum/gwbsim/internal/grid"
)

// GridPool recycles worker grids between runs that share axes, such as
// the points of a sweep.
type GridPool struct {
	pool sync.Pool
	z, f grid.Axis
}

func NewGridPool(z, f grid.Axis) *GridPool {
	p := &GridPool{z: z, f: f}
	p.pool.New = func() any { return grid.New(z, f) }
	return p
}

// Get returns a zeroed grid.
func (p *GridPool) Get() *grid.Grid {
	return p.pool.Get().(*grid.Grid)
}

// Put returns g to the pool. Grids with other axes are dropped.
func (p *GridPool) Put(g *grid.Grid) {
	if g == nil || !g.Z.Equal(p.z) || !g.F.Equal(p.f) {
		return
	}
	g.Reset()
	p.pool.Put(g)
}

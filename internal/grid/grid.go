package grid

import (
	"fmt"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

// Grid accumulates Omega and binary counts on (z, f) cells, one array per
// Kind. Cells are stored row major: index i*nf + j for epoch i and
// frequency bin j. A Grid is not safe for concurrent writes; give each
// worker its own and Merge them.
type Grid struct {
	Z, F  Axis
	omega [numKinds][]float64
	count [numKinds][]float64
}

func New(z, f Axis) *Grid {
	g := &Grid{Z: z, F: f}
	n := z.Len() * f.Len()
	for k := range g.omega {
		g.omega[k] = make([]float64, n)
		g.count[k] = make([]float64, n)
	}
	return g
}

// NewLike returns an empty grid with the same axes.
func (g *Grid) NewLike() *Grid {
	return New(g.Z, g.F)
}

// Reset zeroes every cell.
func (g *Grid) Reset() {
	for k := range g.omega {
		clear(g.omega[k])
		clear(g.count[k])
	}
}

func (g *Grid) NZ() int { return g.Z.Len() }
func (g *Grid) NF() int { return g.F.Len() }

func (g *Grid) cell(i, j int) int { return i*g.F.Len() + j }

// Add deposits omega and n into cell (i, j) of kind k.
func (g *Grid) Add(k Kind, i, j int, omega, n float64) {
	c := g.cell(i, j)
	g.omega[k][c] += omega
	g.count[k][c] += n
}

func (g *Grid) Omega(k Kind, i, j int) float64 { return g.omega[k][g.cell(i, j)] }
func (g *Grid) Count(k Kind, i, j int) float64 { return g.count[k][g.cell(i, j)] }

// OmegaCells exposes the flattened array of kind k. Callers must not
// modify it.
func (g *Grid) OmegaCells(k Kind) []float64 { return g.omega[k] }
func (g *Grid) CountCells(k Kind) []float64 { return g.count[k] }

// TotalCount is N summed over kinds for cell (i, j).
func (g *Grid) TotalCount(i, j int) float64 {
	c := g.cell(i, j)
	var sum float64
	for k := range g.count {
		sum += g.count[k][c]
	}
	return sum
}

// SetCells replaces the arrays of kind k, e.g. when loading a stored run.
func (g *Grid) SetCells(k Kind, omega, count []float64) error {
	n := g.NZ() * g.NF()
	if omega != nil {
		if len(omega) != n {
			return fmt.Errorf("%s omega: %w (%d cells, want %d)", k, dynamo.ErrShapeMismatch, len(omega), n)
		}
		copy(g.omega[k], omega)
	}
	if count != nil {
		if len(count) != n {
			return fmt.Errorf("%s count: %w (%d cells, want %d)", k, dynamo.ErrShapeMismatch, len(count), n)
		}
		copy(g.count[k], count)
	}
	return nil
}

// Merge adds other into g cell by cell.
func (g *Grid) Merge(other *Grid) error {
	if !g.Z.Equal(other.Z) || !g.F.Equal(other.F) {
		return dynamo.ErrShapeMismatch
	}
	for k := range g.omega {
		for c, v := range other.omega[k] {
			g.omega[k][c] += v
		}
		for c, v := range other.count[k] {
			g.count[k][c] += v
		}
	}
	return nil
}

// Totals sums the Omega and count arrays of kind k.
func (g *Grid) Totals(k Kind) (omega, count float64) {
	for c := range g.omega[k] {
		omega += g.omega[k][c]
		count += g.count[k][c]
	}
	return omega, count
}

// Spectrum collapses kind k over redshift, one value per frequency bin.
func (g *Grid) Spectrum(k Kind) []float64 {
	out := make([]float64, g.NF())
	for i := 0; i < g.NZ(); i++ {
		row := g.omega[k][i*g.NF() : (i+1)*g.NF()]
		for j, v := range row {
			out[j] += v
		}
	}
	return out
}

// Shells collapses kind k over frequency, one value per epoch.
func (g *Grid) Shells(k Kind) []float64 {
	out := make([]float64, g.NZ())
	for i := range out {
		for _, v := range g.omega[k][i*g.NF() : (i+1)*g.NF()] {
			out[i] += v
		}
	}
	return out
}

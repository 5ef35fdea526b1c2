package analysis

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/sim"
)

// Point is the background in one received frequency bin, summed over
// redshift.
type Point struct {
	F      float64 `json:"f"`
	Bulk   float64 `json:"omega_bulk"`
	Birth  float64 `json:"omega_birth"`
	Merger float64 `json:"omega_merger"`
}

func (p Point) Total() float64 { return p.Bulk + p.Birth + p.Merger }

func (p Point) Kind(k grid.Kind) float64 {
	switch k {
	case grid.Birth:
		return p.Birth
	case grid.Merger:
		return p.Merger
	}
	return p.Bulk
}

// Spectrum collapses every kind of g over redshift.
func Spectrum(g *grid.Grid) []Point {
	bulk, birth, merger := g.Spectrum(grid.Bulk), g.Spectrum(grid.Birth), g.Spectrum(grid.Merger)
	pts := make([]Point, g.NF())
	for j := range pts {
		pts[j] = Point{F: g.F.Centres[j], Bulk: bulk[j], Birth: birth[j], Merger: merger[j]}
	}
	return pts
}

// Totals returns the total spectrum values of pts.
func Totals(pts []Point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Total()
	}
	return out
}

// KindFractions is the share of the summed Omega carried by each kind.
// All fractions are zero for an empty grid.
func KindFractions(g *grid.Grid) map[grid.Kind]float64 {
	sums := make([]float64, len(grid.Kinds))
	for i, k := range grid.Kinds {
		sums[i] = floats.Sum(g.OmegaCells(k))
	}
	total := floats.Sum(sums)

	out := make(map[grid.Kind]float64, len(grid.Kinds))
	for i, k := range grid.Kinds {
		if total > 0 {
			out[k] = sums[i] / total
		} else {
			out[k] = 0
		}
	}
	return out
}

// Shell is the contribution of one epoch, summed over frequency and kind.
type Shell struct {
	Index    int     `json:"index"`
	Z        float64 `json:"z"`
	Omega    float64 `json:"omega"`
	Fraction float64 `json:"fraction"`
	N        float64 `json:"n"`
}

// Shells splits the background by redshift shell. epochs may be nil, in
// which case Z is the epoch axis centre.
func Shells(g *grid.Grid, epochs []sim.Epoch) []Shell {
	omega := make([]float64, g.NZ())
	for _, k := range grid.Kinds {
		floats.Add(omega, g.Shells(k))
	}
	total := floats.Sum(omega)

	out := make([]Shell, g.NZ())
	for i := range out {
		s := Shell{Index: i, Z: g.Z.Centres[i], Omega: omega[i]}
		if i < len(epochs) {
			s.Z = epochs[i].Z
		}
		if total > 0 {
			s.Fraction = omega[i] / total
		}
		for j := 0; j < g.NF(); j++ {
			s.N += g.TotalCount(i, j)
		}
		out[i] = s
	}
	return out
}

// Peak returns the point with the largest total, or false for an empty or
// all-zero spectrum.
func Peak(pts []Point) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	i := floats.MaxIdx(Totals(pts))
	if pts[i].Total() <= 0 {
		return Point{}, false
	}
	return pts[i], true
}

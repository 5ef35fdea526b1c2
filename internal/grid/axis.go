package grid

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

// Axis is a set of bin edges with per-bin centres. Bins are half open,
// [Edges[j], Edges[j+1]), so a value on an interior edge belongs to the
// upper bin and the last edge itself is outside.
type Axis struct {
	Edges   []float64 `json:"edges"`
	Centres []float64 `json:"centres"`
}

// LogAxis builds n bins between 10^logMin and 10^logMax. The 2n+1 point
// logspace supplies edges at even indices and centres at odd ones, so each
// centre is the geometric mean of its edges.
func LogAxis(n int, logMin, logMax float64) (Axis, error) {
	if n < 1 || !(logMax > logMin) {
		return Axis{}, fmt.Errorf("%w: log axis needs n >= 1 and max > min (got %d, %g, %g)", dynamo.ErrInvalidConfig, n, logMin, logMax)
	}
	pts := 2*n + 1
	step := (logMax - logMin) / float64(pts-1)

	a := Axis{Edges: make([]float64, n+1), Centres: make([]float64, n)}
	for k := 0; k < pts; k++ {
		v := math.Pow(10, logMin+float64(k)*step)
		if k%2 == 0 {
			a.Edges[k/2] = v
		} else {
			a.Centres[k/2] = v
		}
	}
	return a, nil
}

// LinearAxis builds n equal bins over [lo, hi] with midpoint centres.
func LinearAxis(n int, lo, hi float64) (Axis, error) {
	if n < 1 || !(hi > lo) {
		return Axis{}, fmt.Errorf("%w: linear axis needs n >= 1 and hi > lo (got %d, %g, %g)", dynamo.ErrInvalidConfig, n, lo, hi)
	}
	w := (hi - lo) / float64(n)
	a := Axis{Edges: make([]float64, n+1), Centres: make([]float64, n)}
	for i := 0; i <= n; i++ {
		a.Edges[i] = lo + float64(i)*w
	}
	a.Edges[n] = hi
	for i := 0; i < n; i++ {
		a.Centres[i] = 0.5 * (a.Edges[i] + a.Edges[i+1])
	}
	return a, nil
}

// FromEdges rebuilds an axis from stored edges and centres.
func FromEdges(edges, centres []float64) (Axis, error) {
	if len(edges) < 2 || len(centres) != len(edges)-1 {
		return Axis{}, fmt.Errorf("%w: %d edges with %d centres", dynamo.ErrShapeMismatch, len(edges), len(centres))
	}
	return Axis{Edges: edges, Centres: centres}, nil
}

func (a Axis) Len() int { return len(a.Centres) }

func (a Axis) Lo() float64 { return a.Edges[0] }
func (a Axis) Hi() float64 { return a.Edges[len(a.Edges)-1] }

func (a Axis) Width(j int) float64 { return a.Edges[j+1] - a.Edges[j] }

// Index returns the bin holding x, or -1 outside [Lo, Hi).
func (a Axis) Index(x float64) int {
	if x < a.Lo() || x >= a.Hi() {
		return -1
	}
	// First edge strictly greater than x, minus one.
	return sort.Search(len(a.Edges), func(i int) bool { return a.Edges[i] > x }) - 1
}

// BinFactor is centre * (hi^(2/3) - lo^(2/3)) / (hi - lo), the weight an
// f^(2/3) spectrum gives bin j relative to its centre value.
func (a Axis) BinFactor(j int) float64 {
	lo, hi := a.Edges[j], a.Edges[j+1]
	return a.Centres[j] * (math.Pow(hi, 2.0/3.0) - math.Pow(lo, 2.0/3.0)) / (hi - lo)
}

func (a Axis) Equal(b Axis) bool {
	if len(a.Edges) != len(b.Edges) {
		return false
	}
	for i := range a.Edges {
		if a.Edges[i] != b.Edges[i] {
			return false
		}
	}
	return true
}

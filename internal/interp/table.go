package interp

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

// Policy decides what happens to a query outside the tabulated domain.
// Tables never extrapolate.
type Policy int

const (
	// Reject returns a *dynamo.DomainError wrapping dynamo.ErrOutOfRange.
	Reject Policy = iota
	// Clamp returns the boundary value and counts the query.
	Clamp
)

func (p Policy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Clamp:
		return "clamp"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "reject":
		return Reject, nil
	case "clamp":
		return Clamp, nil
	}
	return Reject, fmt.Errorf("%w: out_of_range policy %q (want reject or clamp)", dynamo.ErrInvalidConfig, s)
}

// edgeTolerance is the fraction of the domain width treated as inside the
// table at either end. It absorbs rounding in chained age arithmetic.
const edgeTolerance = 1e-9

// Table is a piecewise-linear function over strictly increasing abscissae.
// It is read-only after construction apart from the clamp counter.
type Table struct {
	name   string
	xs, ys []float64
	policy Policy
	clamps atomic.Int64
}

func NewTable(name string, xs, ys []float64, policy Policy) (*Table, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%s: %d abscissae but %d values", name, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%s: %w", name, dynamo.ErrEmptyTable)
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("%s: row %d (%g after %g): %w", name, i, xs[i], xs[i-1], dynamo.ErrNonMonotone)
		}
	}

	t := &Table{
		name:   name,
		xs:     append([]float64(nil), xs...),
		ys:     append([]float64(nil), ys...),
		policy: policy,
	}
	return t, nil
}

func (t *Table) Name() string { return t.name }

func (t *Table) Domain() (float64, float64) {
	return t.xs[0], t.xs[len(t.xs)-1]
}

// Clamps reports how many queries were clamped to the domain edge.
func (t *Table) Clamps() int64 { return t.clamps.Load() }

func (t *Table) At(x float64) (float64, error) {
	lo, hi := t.Domain()
	slack := edgeTolerance * (hi - lo)

	switch {
	case x < lo:
		if x >= lo-slack {
			return t.ys[0], nil
		}
		return t.outside(x, t.ys[0])
	case x > hi:
		if x <= hi+slack {
			return t.ys[len(t.ys)-1], nil
		}
		return t.outside(x, t.ys[len(t.ys)-1])
	}

	i := sort.SearchFloat64s(t.xs, x)
	if i == 0 {
		return t.ys[0], nil
	}
	x0, x1 := t.xs[i-1], t.xs[i]
	y0, y1 := t.ys[i-1], t.ys[i]
	return y0 + (x-x0)*(y1-y0)/(x1-x0), nil
}

// Bound applies the out-of-range policy to x itself: it returns x when it
// lies in the domain, the nearest edge under Clamp, or a DomainError.
func (t *Table) Bound(x float64) (float64, error) {
	lo, hi := t.Domain()
	slack := edgeTolerance * (hi - lo)
	switch {
	case x < lo-slack:
		return t.outside(x, lo)
	case x > hi+slack:
		return t.outside(x, hi)
	}
	return x, nil
}

func (t *Table) outside(x, edge float64) (float64, error) {
	if t.policy == Clamp {
		t.clamps.Add(1)
		return edge, nil
	}
	lo, hi := t.Domain()
	return 0, &dynamo.DomainError{Table: t.name, Query: x, Lo: lo, Hi: hi, Wrapped: dynamo.ErrOutOfRange}
}

package cosmology

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/integrators"
)

const ageSteps = 20000

// Cosmology caches comoving distance and lookback time on a uniform
// redshift grid. It is immutable after New and safe for concurrent use.
type Cosmology struct {
	params   Params
	maxZ     float64
	dz       float64
	chi      []float64
	lookback []float64
	age0     float64
}

// New integrates the distance and time integrals from z = 0 to maxZ in the
// given number of steps.
func New(p Params, integ dynamo.Integrator, maxZ float64, steps int) (*Cosmology, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if maxZ <= 0 || steps < 1 {
		return nil, fmt.Errorf("%w: cosmology table needs max_z > 0 and steps > 0 (got %g, %d)", dynamo.ErrInvalidConfig, maxZ, steps)
	}

	h0 := p.HubbleMyr()
	dz := maxZ / float64(steps)
	states, err := integrators.Tabulate(distanceSystem{p: p, h0: h0}, integ, dynamo.State{0, 0}, 0, dz, steps)
	if err != nil {
		return nil, fmt.Errorf("distance integral: %w", err)
	}

	c := &Cosmology{
		params:   p,
		maxZ:     maxZ,
		dz:       dz,
		chi:      make([]float64, len(states)),
		lookback: make([]float64, len(states)),
	}
	for i, s := range states {
		c.chi[i] = s[0]
		c.lookback[i] = s[1]
	}

	age, err := integrators.Integrate(ageSystem{p: p, h0: h0}, integ, dynamo.State{0}, 0, 1, ageSteps)
	if err != nil {
		return nil, fmt.Errorf("age integral: %w", err)
	}
	c.age0 = age[0]

	return c, nil
}

func (c *Cosmology) Params() Params { return c.params }
func (c *Cosmology) MaxZ() float64  { return c.maxZ }

// AgeNow is the age of the universe at z = 0 in Myr.
func (c *Cosmology) AgeNow() float64 { return c.age0 }

// Chi is the comoving distance to z in Mpc.
func (c *Cosmology) Chi(z float64) (float64, error) {
	return c.lookup("comoving distance", c.chi, z)
}

// Lookback is the lookback time to z in Myr.
func (c *Cosmology) Lookback(z float64) (float64, error) {
	return c.lookup("lookback time", c.lookback, z)
}

// Age is the age of the universe at z in Myr.
func (c *Cosmology) Age(z float64) (float64, error) {
	t, err := c.Lookback(z)
	if err != nil {
		return 0, err
	}
	return c.age0 - t, nil
}

// ShellDepth is chi(z1) - chi(z0).
func (c *Cosmology) ShellDepth(z0, z1 float64) (float64, error) {
	lo, err := c.Chi(z0)
	if err != nil {
		return 0, err
	}
	hi, err := c.Chi(z1)
	if err != nil {
		return 0, err
	}
	return hi - lo, nil
}

// RedshiftAtLookback inverts Lookback.
func (c *Cosmology) RedshiftAtLookback(t float64) (float64, error) {
	n := len(c.lookback)
	if t < 0 || t > c.lookback[n-1] {
		return 0, &dynamo.DomainError{Table: "lookback time", Query: t, Lo: 0, Hi: c.lookback[n-1], Wrapped: dynamo.ErrOutOfRange}
	}
	i := sort.SearchFloat64s(c.lookback, t)
	if i == 0 {
		return 0, nil
	}
	t0, t1 := c.lookback[i-1], c.lookback[i]
	frac := (t - t0) / (t1 - t0)
	return (float64(i-1) + frac) * c.dz, nil
}

// AgeRedshiftTable samples n ages evenly between Age(maxZ) and AgeNow and
// returns them with their redshifts. Ages increase and redshifts decrease.
func (c *Cosmology) AgeRedshiftTable(n int) ([]float64, []float64, error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: age table needs at least 2 points, got %d", dynamo.ErrInvalidConfig, n)
	}

	oldest, err := c.Age(c.maxZ)
	if err != nil {
		return nil, nil, err
	}

	ages := make([]float64, n)
	zs := make([]float64, n)
	step := (c.age0 - oldest) / float64(n-1)
	for i := range ages {
		ages[i] = oldest + float64(i)*step
		lb := math.Max(0, math.Min(c.age0-ages[i], c.lookback[len(c.lookback)-1]))
		z, err := c.RedshiftAtLookback(lb)
		if err != nil {
			return nil, nil, err
		}
		zs[i] = z
	}
	zs[0], zs[n-1] = c.maxZ, 0
	ages[n-1] = c.age0

	return ages, zs, nil
}

func (c *Cosmology) lookup(name string, ys []float64, z float64) (float64, error) {
	if z < 0 || z > c.maxZ {
		return 0, &dynamo.DomainError{Table: name, Query: z, Lo: 0, Hi: c.maxZ, Wrapped: dynamo.ErrOutOfRange}
	}
	pos := z / c.dz
	i := int(pos)
	if i >= len(ys)-1 {
		return ys[len(ys)-1], nil
	}
	frac := pos - float64(i)
	return ys[i] + frac*(ys[i+1]-ys[i]), nil
}

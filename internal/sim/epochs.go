package sim

import (
	"fmt"

	"github.com/san-kum/gwbsim/internal/cosmology"
	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/interp"
	"github.com/san-kum/gwbsim/internal/physics"
)

// BuildEpochs divides [0, maxZ] into n shells, linear in redshift or in
// lookback time depending on mode. The returned axis holds the shell
// edges in the same variable.
func BuildEpochs(mode dynamo.Mode, n int, maxZ float64, c *cosmology.Cosmology, r *interp.Redshift) ([]Epoch, grid.Axis, error) {
	if maxZ > c.MaxZ() {
		return nil, grid.Axis{}, fmt.Errorf("%w: epochs reach z=%g but distances are tabulated to z=%g",
			dynamo.ErrInvalidConfig, maxZ, c.MaxZ())
	}
	ageMax, err := r.Age(maxZ)
	if err != nil {
		return nil, grid.Axis{}, fmt.Errorf("age at max redshift: %w", err)
	}

	switch mode {
	case dynamo.ModeRedshift:
		return redshiftEpochs(n, maxZ, ageMax, c, r)
	case dynamo.ModeTime:
		return timeEpochs(n, maxZ, ageMax, c, r)
	}
	_, err = dynamo.ParseMode(string(mode))
	return nil, grid.Axis{}, err
}

func redshiftEpochs(n int, maxZ, ageMax float64, c *cosmology.Cosmology, r *interp.Redshift) ([]Epoch, grid.Axis, error) {
	axis, err := grid.LinearAxis(n, 0, maxZ)
	if err != nil {
		return nil, grid.Axis{}, err
	}

	epochs := make([]Epoch, n)
	for i := range epochs {
		ep := Epoch{Index: i, Lo: axis.Edges[i], Hi: axis.Edges[i+1], Z: axis.Centres[i]}
		if ep.DChi, err = c.ShellDepth(ep.Lo, ep.Hi); err != nil {
			return nil, grid.Axis{}, err
		}
		if err := fill(&ep, ageMax, c, r); err != nil {
			return nil, grid.Axis{}, err
		}
		epochs[i] = ep
	}
	return epochs, axis, nil
}

func timeEpochs(n int, maxZ, ageMax float64, c *cosmology.Cosmology, r *interp.Redshift) ([]Epoch, grid.Axis, error) {
	ageNow, err := r.Age(0)
	if err != nil {
		return nil, grid.Axis{}, fmt.Errorf("present age: %w", err)
	}
	axis, err := grid.LinearAxis(n, 0, ageNow-ageMax)
	if err != nil {
		return nil, grid.Axis{}, err
	}

	epochs := make([]Epoch, n)
	for i := range epochs {
		ep := Epoch{Index: i, Lo: axis.Edges[i], Hi: axis.Edges[i+1]}
		if ep.Z, err = r.Z(ageNow - axis.Centres[i]); err != nil {
			return nil, grid.Axis{}, err
		}
		if ep.Z < 0 {
			ep.Z = 0
		}
		ep.DChi = physics.LightSpeed * (1 + ep.Z) * axis.Width(i)
		if err := fill(&ep, ageMax, c, r); err != nil {
			return nil, grid.Axis{}, err
		}
		epochs[i] = ep
	}
	return epochs, axis, nil
}

func fill(ep *Epoch, ageMax float64, c *cosmology.Cosmology, r *interp.Redshift) error {
	var err error
	if ep.Chi, err = c.Chi(ep.Z); err != nil {
		return fmt.Errorf("epoch %d: %w", ep.Index, err)
	}
	if ep.Age, err = r.Age(ep.Z); err != nil {
		return fmt.Errorf("epoch %d: %w", ep.Index, err)
	}
	ep.SinceMaxZ = ep.Age - ageMax
	return nil
}

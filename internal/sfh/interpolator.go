package sfh

import (
	"fmt"

	"github.com/san-kum/gwbsim/internal/interp"
)

// Interpolator evaluates a model at redshifts or at cosmic ages through a
// redshift table. Queries outside the table's redshift range follow its
// out-of-range policy. Rates are clamped to be non-negative.
type Interpolator struct {
	model    Model
	redshift *interp.Redshift
}

func NewInterpolator(model Model, redshift *interp.Redshift) *Interpolator {
	return &Interpolator{model: model, redshift: redshift}
}

func (s *Interpolator) Model() Model { return s.model }

// Clamps reports lookups clamped inside the model's own table. Redshifts
// clamped to the redshift table's range are counted by that table.
func (s *Interpolator) Clamps() int64 {
	if c, ok := s.model.(interface{ Clamps() int64 }); ok {
		return c.Clamps()
	}
	return 0
}

// At returns psi(z).
func (s *Interpolator) At(z float64) (float64, error) {
	z, err := s.redshift.BoundZ(z)
	if err != nil {
		return 0, fmt.Errorf("star formation rate: %w", err)
	}
	psi, err := s.model.Rate(z)
	if err != nil {
		return 0, err
	}
	if psi < 0 {
		return 0, nil
	}
	return psi, nil
}

// Representative returns psi at the redshift where the universe was
// age - delay Myr old, the formation epoch of a binary observed at age
// after evolving for delay.
func (s *Interpolator) Representative(age, delay float64) (float64, error) {
	z, err := s.redshift.Z(age - delay)
	if err != nil {
		return 0, fmt.Errorf("formation epoch of age %g with delay %g: %w", age, delay, err)
	}
	return s.At(z)
}

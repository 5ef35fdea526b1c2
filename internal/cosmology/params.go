package cosmology

import (
	"fmt"
	"math"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/physics"
)

// Params describes a flat FLRW cosmology. H0 is in km/s/Mpc.
type Params struct {
	H0     float64 `yaml:"h0" json:"h0"`
	OmegaM float64 `yaml:"omega_m" json:"omega_m"`
	OmegaR float64 `yaml:"omega_r" json:"omega_r"`
}

// Planck18 returns the Planck 2018 TT,TE,EE+lowE+lensing+BAO parameters
// without the radiation term.
func Planck18() Params {
	return Params{H0: 67.66, OmegaM: 0.30966}
}

// OmegaL closes the universe.
func (p Params) OmegaL() float64 {
	return 1 - p.OmegaM - p.OmegaR
}

// HubbleMyr is H0 in 1/Myr.
func (p Params) HubbleMyr() float64 {
	return p.H0 * 1e3 * physics.SecondsPerMyr / physics.MpcMeters
}

// HubbleFrac is E(z) = H(z)/H0.
func (p Params) HubbleFrac(z float64) float64 {
	zp := 1 + z
	return math.Sqrt(p.OmegaR*zp*zp*zp*zp + p.OmegaM*zp*zp*zp + p.OmegaL())
}

func (p Params) Validate() error {
	if p.H0 <= 0 {
		return fmt.Errorf("%w: h0 must be positive, got %g", dynamo.ErrInvalidConfig, p.H0)
	}
	if p.OmegaM <= 0 || p.OmegaR < 0 || p.OmegaL() < 0 {
		return fmt.Errorf("%w: density parameters (omega_m=%g, omega_r=%g) must be non-negative and sum to at most 1",
			dynamo.ErrInvalidConfig, p.OmegaM, p.OmegaR)
	}
	return nil
}

// distanceSystem integrates comoving distance and lookback time over z:
// dchi/dz = c/H(z), dT/dz = 1/((1+z) H(z)).
type distanceSystem struct {
	p  Params
	h0 float64
}

func (d distanceSystem) Derive(x dynamo.State, z float64) dynamo.State {
	h := d.h0 * d.p.HubbleFrac(z)
	return dynamo.State{physics.LightSpeed / h, 1 / ((1 + z) * h)}
}

func (d distanceSystem) StateDim() int { return 2 }

// ageSystem integrates cosmic time over the scale factor:
// dt/da = 1/(H0 sqrt(Om/a + Or/a^2 + OL a^2)).
type ageSystem struct {
	p  Params
	h0 float64
}

func (s ageSystem) Derive(x dynamo.State, a float64) dynamo.State {
	if a <= 0 {
		return dynamo.State{0}
	}
	return dynamo.State{1 / (s.h0 * math.Sqrt(s.p.OmegaM/a+s.p.OmegaR/(a*a)+s.p.OmegaL()*a*a))}
}

func (s ageSystem) StateDim() int { return 1 }

package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

// Normalization is threaded through every grid accumulation so bulk, birth
// and merger cells share one scale.
type Normalization struct {
	// Mass is the stellar mass S represented by the population synthesis run.
	Mass float64 `yaml:"mass" json:"mass"`
	// Prefactor is the Omega prefactor A in GW-frequency form.
	Prefactor float64 `yaml:"prefactor" json:"prefactor"`
	// OmegaScale divides every stored Omega value.
	OmegaScale float64 `yaml:"omega_scale" json:"omega_scale"`
}

func DefaultNormalization() Normalization {
	return Normalization{
		Mass:       3.4e6,
		Prefactor:  8.10e-9,
		OmegaScale: 1e-15,
	}
}

func (n Normalization) Validate() error {
	if n.Mass <= 0 {
		return fmt.Errorf("%w: normalization mass must be positive, got %g", dynamo.ErrInvalidConfig, n.Mass)
	}
	if n.Prefactor <= 0 {
		return fmt.Errorf("%w: omega prefactor must be positive, got %g", dynamo.ErrInvalidConfig, n.Prefactor)
	}
	if n.OmegaScale <= 0 {
		return fmt.Errorf("%w: omega scale must be positive, got %g", dynamo.ErrInvalidConfig, n.OmegaScale)
	}
	return nil
}

// Deposit describes one trajectory segment inside one (z, f) cell.
type Deposit struct {
	Psi       float64 // Msun / yr / Mpc^3 at formation
	ChirpMass float64 // Msun
	Z         float64
	Chi       float64 // Mpc
	DChi      float64 // Mpc
	Centre    float64 // received bin centre, Hz
	Width     float64 // received bin width, Hz
	LoEmit    float64 // emitted GW frequency entering the bin
	HiEmit    float64 // emitted GW frequency leaving the bin
	Time      float64 // Myr spent between LoEmit and HiEmit
}

// Omega returns the cell's energy density divided by OmegaScale.
func (n Normalization) Omega(d Deposit) float64 {
	if d.HiEmit <= d.LoEmit || d.Psi <= 0 {
		return 0
	}
	sweep := math.Pow(d.HiEmit, 2.0/3.0) - math.Pow(d.LoEmit, 2.0/3.0)
	return n.Prefactor / n.Mass * d.Psi * math.Pow(d.ChirpMass, 5.0/3.0) *
		math.Pow(1+d.Z, -2) * d.DChi * d.Centre * sweep / d.Width / n.OmegaScale
}

// Count returns the number of binaries the segment represents.
func (n Normalization) Count(d Deposit) float64 {
	if d.Time <= 0 || d.Psi <= 0 {
		return 0
	}
	return ShellVolume(d.Chi, d.DChi) * d.Psi * d.Time * YearsPerMyr / n.Mass
}

// ShellVolume is the comoving volume 4 pi chi^2 dchi of a shell in Mpc^3.
func ShellVolume(chi, dChi float64) float64 {
	return 4 * math.Pi * chi * chi * dChi
}

// ReferenceOmega is the f^(2/3) power law through (fRef, omegaRef).
func ReferenceOmega(omegaRef, fRef, f float64) float64 {
	return omegaRef * math.Pow(f/fRef, 2.0/3.0)
}

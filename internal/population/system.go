package population

import (
	"errors"
	"math"

	"github.com/san-kum/gwbsim/internal/physics"
)

// Reasons a catalog row is rejected.
var (
	errMassRange = errors.New("mass_out_of_range")
	errDelay     = errors.New("negative_delay")
	errFrequency = errors.New("non_positive_frequency")
	errContact   = errors.New("born_in_contact")
)

// BinarySystem is one double white dwarf from a population synthesis run.
// Frequencies are orbital; the emitted GW frequency is twice as high.
type BinarySystem struct {
	T0        float64 `json:"t0"`     // Myr from ZAMS to double white dwarf formation
	A         float64 `json:"a"`      // initial separation, Rsun (0 if not supplied)
	M1        float64 `json:"m1"`     // Msun
	M2        float64 `json:"m2"`     // Msun
	Nu0       float64 `json:"nu0"`    // Hz
	ChirpMass float64 `json:"M_ch"`   // Msun
	K         float64 `json:"K"`      // SI
	NuMax     float64 `json:"nu_max"` // Hz, at Roche-lobe contact
	DtMax     float64 `json:"Dt_max"` // Myr from formation to contact
}

// New derives chirp mass, inspiral constant, contact frequency and time to
// contact from the primary columns.
func New(t0, m1, m2, nu0 float64) (BinarySystem, error) {
	b := BinarySystem{T0: t0, M1: m1, M2: m2, Nu0: nu0}
	if err := b.checkPrimary(); err != nil {
		return b, err
	}
	b.derive()
	if b.NuMax <= b.Nu0 {
		return b, errContact
	}
	return b, nil
}

// FromSeparation computes the initial orbital frequency from Kepler's law.
func FromSeparation(t0, a, m1, m2 float64) (BinarySystem, error) {
	if !(a > 0) {
		return BinarySystem{}, errFrequency
	}
	b, err := New(t0, m1, m2, physics.KeplerFrequency(a, m1, m2))
	b.A = a
	return b, err
}

func (b *BinarySystem) checkPrimary() error {
	for _, m := range []float64{b.M1, b.M2} {
		if !(m > 0 && m < physics.MaxWDMass) {
			return errMassRange
		}
	}
	if !(b.T0 >= 0) {
		return errDelay
	}
	if !(b.Nu0 > 0) || math.IsInf(b.Nu0, 0) {
		return errFrequency
	}
	return nil
}

func (b *BinarySystem) derive() {
	b.ChirpMass = physics.ChirpMass(b.M1, b.M2)
	b.K = physics.InspiralConstant(b.ChirpMass)
	b.NuMax = physics.ContactFrequency(b.M1, b.M2)
	b.DtMax = physics.InspiralTime(2*b.Nu0, 2*b.NuMax, b.K)
}

// BirthFrequency is the emitted GW frequency at formation.
func (b BinarySystem) BirthFrequency() float64 { return 2 * b.Nu0 }

// ContactFrequency is the emitted GW frequency at contact.
func (b BinarySystem) ContactFrequency() float64 { return 2 * b.NuMax }

// Merges reports whether contact is reached within t Myr of formation.
func (b BinarySystem) Merges(t float64) bool { return b.DtMax < t }

package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

func ChirpMass(m1, m2 float64) float64 {
	return math.Pow(m1*m2, 3.0/5.0) / math.Pow(m1+m2, 1.0/5.0)
}

// InspiralConstant is the GW-driven inspiral constant K in SI units.
func InspiralConstant(chirpMass float64) float64 {
	return 96.0 / 5.0 * math.Pow(2*math.Pi, 8.0/3.0) * math.Pow(G*chirpMass*MSun, 5.0/3.0) / math.Pow(C, 5)
}

// InspiralTime returns the Myr a binary with constant k needs to sweep GW
// frequency f0 up to f1.
func InspiralTime(f0, f1, k float64) float64 {
	return inspiralCoeff * (math.Pow(f0, -8.0/3.0) - math.Pow(f1, -8.0/3.0)) / k / SecondsPerMyr
}

// FrequencyAfter returns the GW frequency reached after evolving t Myr from
// GW frequency f0.
func FrequencyAfter(f0, t, k float64) (float64, error) {
	x := math.Pow(f0, -8.0/3.0) - k*t*SecondsPerMyr/inspiralCoeff
	if x <= 0 {
		return 0, fmt.Errorf("evolve %g Myr from %g Hz: %w", t, f0, dynamo.ErrCoalesced)
	}
	return math.Pow(x, -3.0/8.0), nil
}

// WDRadius is the Eggleton mass-radius relation in solar radii, valid for
// 0 < m < MaxWDMass.
func WDRadius(m float64) float64 {
	x := m / MaxWDMass
	return 0.0114 * math.Sqrt(math.Pow(x, -2.0/3.0)-math.Pow(x, 2.0/3.0)) *
		math.Pow(1+3.5*math.Pow(m/0.00057, -2.0/3.0)+0.00057/m, -2.0/3.0)
}

// MinSeparation is the orbital separation at which either white dwarf fills
// its Roche lobe.
func MinSeparation(m1, m2 float64) float64 {
	r1, r2 := WDRadius(m1), WDRadius(m2)
	q := m2 / m1
	a1 := r1 * (0.6 + math.Pow(q, 2.0/3.0)*math.Log(1+math.Pow(q, -1.0/3.0))) / 0.49
	a2 := r2 * (0.6 + math.Pow(q, -2.0/3.0)*math.Log(1+math.Pow(q, 1.0/3.0))) / 0.49
	return math.Max(a1, a2)
}

// KeplerFrequency is the orbital frequency at separation a.
func KeplerFrequency(a, m1, m2 float64) float64 {
	r := a * RSun
	return math.Sqrt(G * MSun * (m1 + m2) / (4 * math.Pi * math.Pi * r * r * r))
}

// ContactFrequency is the orbital frequency at MinSeparation.
func ContactFrequency(m1, m2 float64) float64 {
	return KeplerFrequency(MinSeparation(m1, m2), m1, m2)
}

// Period is the orbital period in seconds at separation a.
func Period(a, m1, m2 float64) float64 {
	return 1 / KeplerFrequency(a, m1, m2)
}

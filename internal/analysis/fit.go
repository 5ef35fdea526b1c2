package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/gwbsim/internal/physics"
)

// ErrTooFewPoints is returned when a fit has fewer than two usable bins.
var ErrTooFewPoints = errors.New("gwb: too few positive spectrum points to fit")

// PowerLaw is Omega(f) = Amplitude * (f / FRef)^Index.
type PowerLaw struct {
	Index     float64 `json:"index"`
	Amplitude float64 `json:"amplitude"`
	FRef      float64 `json:"f_ref"`
	R2        float64 `json:"r2"`
	Points    int     `json:"points"`
}

func (p PowerLaw) At(f float64) float64 {
	return p.Amplitude * math.Pow(f/p.FRef, p.Index)
}

// FitSpectralIndex fits a line to log10 Omega against log10 f over the
// bins with fMin <= f <= fMax and positive total. A zero bound is open.
// FRef is the geometric mean of the fitted frequencies.
func FitSpectralIndex(pts []Point, fMin, fMax float64) (PowerLaw, error) {
	var xs, ys []float64
	for _, p := range pts {
		if (fMin > 0 && p.F < fMin) || (fMax > 0 && p.F > fMax) {
			continue
		}
		if t := p.Total(); t > 0 && p.F > 0 {
			xs = append(xs, math.Log10(p.F))
			ys = append(ys, math.Log10(t))
		}
	}
	if len(xs) < 2 {
		return PowerLaw{}, fmt.Errorf("%w: %d in [%g, %g]", ErrTooFewPoints, len(xs), fMin, fMax)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	xRef := stat.Mean(xs, nil)
	return PowerLaw{
		Index:     beta,
		Amplitude: math.Pow(10, alpha+beta*xRef),
		FRef:      math.Pow(10, xRef),
		R2:        stat.RSquared(xs, ys, nil, alpha, beta),
		Points:    len(xs),
	}, nil
}

// ReferenceLine evaluates the f^(2/3) law through the total at the bin
// nearest fRef, one value per point. It is all zero when that bin is empty.
func ReferenceLine(pts []Point, fRef float64) []float64 {
	out := make([]float64, len(pts))
	if len(pts) == 0 {
		return out
	}
	best := 0
	for i, p := range pts {
		if math.Abs(math.Log(p.F/fRef)) < math.Abs(math.Log(pts[best].F/fRef)) {
			best = i
		}
	}
	anchor := pts[best]
	for i, p := range pts {
		out[i] = physics.ReferenceOmega(anchor.Total(), anchor.F, p.F)
	}
	return out
}

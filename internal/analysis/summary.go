package analysis

import (
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/sim"
)

// Summary collects the reported numbers of one run.
type Summary struct {
	Points      []Point               `json:"spectrum"`
	Fractions   map[string]float64    `json:"fractions"`
	Shells      []Shell               `json:"shells"`
	Peak        *Point                `json:"peak,omitempty"`
	Fit         *PowerLaw             `json:"fit,omitempty"`
	FitError    string                `json:"fit_error,omitempty"`
	Diagnostics map[string]int64      `json:"diagnostics"`
	Totals      map[string][2]float64 `json:"totals"` // omega, n
}

// Summarize fits over the whole frequency axis.
func Summarize(res *sim.Result) Summary {
	pts := Spectrum(res.Grid)
	s := Summary{
		Points:    pts,
		Fractions: make(map[string]float64),
		Shells:    Shells(res.Grid, res.Epochs),
		Totals:    make(map[string][2]float64),
	}
	for k, f := range KindFractions(res.Grid) {
		s.Fractions[k.String()] = f
	}
	for _, k := range grid.Kinds {
		o, n := res.Grid.Totals(k)
		s.Totals[k.String()] = [2]float64{o, n}
	}
	if p, ok := Peak(pts); ok {
		s.Peak = &p
	}
	if fit, err := FitSpectralIndex(pts, 0, 0); err != nil {
		s.FitError = err.Error()
	} else {
		s.Fit = &fit
	}
	if res.Diagnostics != nil {
		s.Diagnostics = res.Diagnostics.Snapshot()
	}
	return s
}

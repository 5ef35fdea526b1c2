package analysis

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

func log10OrNaN(v float64) float64 {
	if v <= 0 {
		return math.NaN()
	}
	return math.Log10(v)
}

func hasData(vs []float64) bool {
	for _, v := range vs {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

// PlotSpectrum draws log10 of the total spectrum and the f^(2/3)
// reference against frequency bin. Empty bins leave gaps. It returns ""
// when nothing is positive.
func PlotSpectrum(pts []Point, fRef float64, width, height int) string {
	total := make([]float64, len(pts))
	ref := ReferenceLine(pts, fRef)
	for i, p := range pts {
		total[i] = log10OrNaN(p.Total())
		ref[i] = log10OrNaN(ref[i])
	}
	if !hasData(total) {
		return ""
	}
	series := [][]float64{total}
	legends := []string{"omega"}
	if hasData(ref) {
		series = append(series, ref)
		legends = append(legends, "f^(2/3)")
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.DarkGray),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("log10 omega vs frequency bin"),
	)
}

// PlotShells draws the fraction of the background per redshift shell.
func PlotShells(shells []Shell, width, height int) string {
	if len(shells) == 0 {
		return ""
	}
	fr := make([]float64, len(shells))
	for i, s := range shells {
		fr[i] = s.Fraction
	}
	return asciigraph.Plot(fr,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("fraction of omega per epoch"),
	)
}

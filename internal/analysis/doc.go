// Package analysis reduces a binned run to the quantities that are
// usually reported for a background: the collapsed spectrum, how it splits
// between contribution kinds and redshift shells, and its power-law slope.
//
// A circular binary population inspiralling under gravitational radiation
// alone gives Omega(f) proportional to f^(2/3); [FitSpectralIndex] measures
// how far a run departs from that and [ReferenceLine] draws it:
//
//	pts := analysis.Spectrum(res.Grid)
//	fit, err := analysis.FitSpectralIndex(pts, 1e-4, 1e-2)
//	ref := analysis.ReferenceLine(pts, 1e-3)
//
// [PlotSpectrum] and [PlotShells] render the same data as terminal charts.
package analysis

package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gwbsim/internal/analysis"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/storage"
)

func (s Styles) row(label, value string) string {
	return s.Label.Render(fmt.Sprintf("%-14s", label)) + " " + s.Value.Render(value)
}

// RenderSummary draws the run header, per-kind totals, spectral fit and
// drop counters as one bordered panel. meta may be nil for an unsaved run.
func RenderSummary(st Styles, meta *storage.RunMetadata, sum analysis.Summary) string {
	var sections []string

	if meta != nil {
		title := "run " + meta.ID
		if meta.Tag != "" {
			title += " (" + meta.Tag + ")"
		}
		sections = append(sections, st.Header.Render(title), strings.Join([]string{
			st.row("sfh", meta.SFH),
			st.row("mode", meta.Mode),
			st.row("catalog", meta.Catalog),
			st.row("systems", fmt.Sprintf("%d (%d binned)", meta.Systems, meta.Binned)),
			st.row("grid", fmt.Sprintf("%d z x %d f", meta.ZBins, meta.FBins)),
			st.row("elapsed", fmt.Sprintf("%.2fs", meta.Elapsed)),
		}, "\n"))
	}

	var kinds []string
	for _, k := range grid.Kinds {
		t := sum.Totals[k.String()]
		frac := sum.Fractions[k.String()]
		kinds = append(kinds, fmt.Sprintf("%s %s %s  N=%s",
			st.Kind[k].Render(fmt.Sprintf("%-7s", k)),
			st.Bar(k, frac, 20),
			st.Value.Render(fmt.Sprintf("%5.1f%%  omega=%.4g", 100*frac, t[0])),
			st.Value.Render(fmt.Sprintf("%.4g", t[1]))))
	}
	sections = append(sections, st.Title.Render("contributions"), strings.Join(kinds, "\n"))

	var spectral []string
	if sum.Peak != nil {
		spectral = append(spectral, st.row("peak", fmt.Sprintf("omega=%.4g at f=%.3g Hz", sum.Peak.Total(), sum.Peak.F)))
	}
	if sum.Fit != nil {
		spectral = append(spectral, st.row("slope", fmt.Sprintf("%.3f (f^2/3 = 0.667), R2=%.3f over %d bins",
			sum.Fit.Index, sum.Fit.R2, sum.Fit.Points)))
	} else if sum.FitError != "" {
		spectral = append(spectral, st.Warn.Render("no fit: "+sum.FitError))
	}
	if len(sum.Points) > 0 {
		spectral = append(spectral, st.row("spectrum", Sparkline(analysis.Totals(sum.Points))))
	}
	if len(sum.Shells) > 0 {
		fr := make([]float64, len(sum.Shells))
		for i, sh := range sum.Shells {
			fr[i] = sh.Fraction
		}
		spectral = append(spectral, st.row("by epoch", Sparkline(fr)))
	}
	sections = append(sections, st.Title.Render("spectrum"), strings.Join(spectral, "\n"))

	if len(sum.Diagnostics) > 0 {
		names := make([]string, 0, len(sum.Diagnostics))
		for name := range sum.Diagnostics {
			names = append(names, name)
		}
		sort.Strings(names)
		var lines []string
		for _, name := range names {
			lines = append(lines, st.row(name, fmt.Sprintf("%d", sum.Diagnostics[name])))
		}
		sections = append(sections, st.Title.Render("diagnostics"), strings.Join(lines, "\n"))
	}

	return st.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/gwbsim/internal/analysis"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/storage"
)

func TestGetThemeFallsBack(t *testing.T) {
	assert.Equal(t, "ocean", GetTheme("ocean").Name)
	assert.Equal(t, ThemeNight, GetTheme("nope"))
	assert.Equal(t, []string{"night", "ocean", "plain"}, ThemeNames())
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▄█", Sparkline([]float64{0, 0.5, 1}))
	assert.Equal(t, "▁▁", Sparkline([]float64{3, 3}))
	assert.Empty(t, Sparkline(nil))
}

func TestBarsClamp(t *testing.T) {
	st := NewStyles(ThemePlain)
	assert.Equal(t, "■■■■■     ", st.Bar(grid.Bulk, 0.5, 10))
	assert.Equal(t, "■■■■", st.Bar(grid.Birth, 3, 4))
	assert.Equal(t, "░░░░", st.ProgressBar(-1, 4))
	assert.Equal(t, "████", st.ProgressBar(2, 4))
}

func TestSpinnerWraps(t *testing.T) {
	assert.Equal(t, Spinner(0), Spinner(10))
}

func TestRenderSummary(t *testing.T) {
	sum := analysis.Summary{
		Points:      []analysis.Point{{F: 1e-4, Bulk: 1}, {F: 1e-3, Bulk: 2, Birth: 1}},
		Fractions:   map[string]float64{"bulk": 0.75, "birth": 0.25, "merger": 0},
		Totals:      map[string][2]float64{"bulk": {3, 10}, "birth": {1, 2}},
		Shells:      []analysis.Shell{{Fraction: 0.6}, {Fraction: 0.4}},
		Peak:        &analysis.Point{F: 1e-3, Bulk: 2, Birth: 1},
		FitError:    "too few",
		Diagnostics: map[string]int64{"not_formed": 7},
	}
	meta := &storage.RunMetadata{ID: "abc", Tag: "test", SFH: "md14", Systems: 12, Binned: 10}

	out := RenderSummary(NewStyles(ThemePlain), meta, sum)
	for _, want := range []string{"run abc (test)", "md14", "12 (10 binned)", "75.0%", "not_formed", "no fit: too few", "peak"} {
		assert.True(t, strings.Contains(out, want), "missing %q in\n%s", want, out)
	}

	assert.NotContains(t, RenderSummary(NewStyles(ThemeNight), nil, sum), "run abc")
}

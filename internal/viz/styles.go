package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gwbsim/internal/grid"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Panel  lipgloss.Style
	Title  lipgloss.Style
	Header lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Kind   map[grid.Kind]lipgloss.Style
	OK     lipgloss.Style
	Warn   lipgloss.Style
	Fail   lipgloss.Style
}

func fg(c lipgloss.Color) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c != "" {
		s = s.Foreground(c)
	}
	return s
}

func NewStyles(t Theme) Styles {
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	if t.Border != "" {
		border = border.BorderForeground(t.Border)
	}
	return Styles{
		Panel: border,
		Title: fg(t.Title).Bold(true),
		Header: fg(t.Title).Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true),
		Label: fg(t.Label),
		Value: fg(t.Value).Bold(true),
		Muted: fg(t.Muted).Italic(true),
		Kind: map[grid.Kind]lipgloss.Style{
			grid.Bulk:   fg(t.Bulk),
			grid.Birth:  fg(t.Birth),
			grid.Merger: fg(t.Merger),
		},
		OK:   fg(t.Success).Bold(true),
		Warn: fg(t.Warning).Bold(true),
		Fail: fg(t.Error).Bold(true),
	}
}

// Spinner returns one frame of a braille spinner.
func Spinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return frames[frame%len(frames)]
}

// ProgressBar renders fraction in [0, 1] as a bar width cells wide.
func (s Styles) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	return s.OK.Render(strings.Repeat("█", filled)) + s.Muted.Render(strings.Repeat("░", width-filled))
}

// Bar renders a fraction as a short horizontal bar in the colour of k.
func (s Styles) Bar(k grid.Kind, fraction float64, width int) string {
	n := int(fraction*float64(width) + 0.5)
	n = max(0, min(n, width))
	return s.Kind[k].Render(strings.Repeat("■", n)) + strings.Repeat(" ", width-n)
}

// Sparkline draws values scaled to their own range, one rune per value.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	var b strings.Builder
	for _, v := range values {
		b.WriteRune(chars[int((v-lo)/rng*float64(len(chars)-1))])
	}
	return b.String()
}

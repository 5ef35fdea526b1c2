package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the palette summaries and the progress view are drawn with.
type Theme struct {
	Name    string
	Title   lipgloss.Color
	Border  lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Muted   lipgloss.Color
	Bulk    lipgloss.Color
	Birth   lipgloss.Color
	Merger  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeNight = Theme{
		Name:    "night",
		Title:   lipgloss.Color("#00ffff"),
		Border:  lipgloss.Color("#444466"),
		Label:   lipgloss.Color("#888899"),
		Value:   lipgloss.Color("#00ccff"),
		Muted:   lipgloss.Color("#666688"),
		Bulk:    lipgloss.Color("#00ccff"),
		Birth:   lipgloss.Color("#00ff88"),
		Merger:  lipgloss.Color("#ff4444"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Title:   lipgloss.Color("#ffd700"),
		Border:  lipgloss.Color("#0077be"),
		Label:   lipgloss.Color("#4488aa"),
		Value:   lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Bulk:    lipgloss.Color("#00a8cc"),
		Birth:   lipgloss.Color("#00ff88"),
		Merger:  lipgloss.Color("#ff9ff3"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	// ThemePlain has no colours, for logs and pipes.
	ThemePlain = Theme{Name: "plain"}

	Themes = []Theme{ThemeNight, ThemeOcean, ThemePlain}
)

// GetTheme falls back to ThemeNight for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNight
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

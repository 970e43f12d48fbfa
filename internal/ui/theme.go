package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. Every style the UI renders is derived from it.
type Theme struct {
	Name string

	Background string
	Surface    string

	SelectionBg   string
	SelectionText string

	Border      string
	BorderMuted string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// Styles contains pre-built Lipgloss styles for a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header    lipgloss.Style
	Footer    lipgloss.Style
	Logo      lipgloss.Style
	Pane      lipgloss.Style
	PaneFocus lipgloss.Style

	theme Theme
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func pane(border string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border))
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	bar := lipgloss.NewStyle().
		Background(lipgloss.Color(t.Surface)).
		Padding(0, 1)

	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:    bar.Foreground(lipgloss.Color(t.Text)),
		Footer:    bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:      fg(t.Warning).Bold(true),
		Pane:      pane(t.Border),
		PaneFocus: pane(t.BorderFocus),

		theme: t,
	}
}

// badgeColor maps a product or request state to a palette color.
func (t Theme) badgeColor(status string) string {
	switch status {
	case "in-stock":
		return t.Success
	case "out-of-stock", "offline":
		return t.Danger
	case "pending":
		return t.Warning
	case "loading":
		return t.Info
	}
	return t.Muted
}

// StatusStyle returns a badge style for status.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.theme.Background)).
		Background(lipgloss.Color(s.theme.badgeColor(status))).
		Padding(0, 1)
}

var themes = []Theme{
	{
		// https://github.com/EdenEast/nightfox.nvim
		Name:          "Nightfox",
		Background:    "#131a24",
		Surface:       "#192330",
		SelectionBg:   "#2b3b51",
		SelectionText: "#cdcecf",
		Border:        "#39506d",
		BorderMuted:   "#212e3f",
		BorderFocus:   "#719cd6",
		Text:          "#cdcecf",
		Muted:         "#738091",
		Faint:         "#71839b",
		Accent:        "#719cd6",
		Success:       "#81b29a",
		Warning:       "#dbc074",
		Danger:        "#c94f6d",
		Info:          "#63cdcf",
	},
	{
		// https://github.com/rebelot/kanagawa.nvim
		Name:          "Kanagawa",
		Background:    "#16161D",
		Surface:       "#1F1F28",
		SelectionBg:   "#2D4F67",
		SelectionText: "#DCD7BA",
		Border:        "#54546D",
		BorderMuted:   "#2A2A37",
		BorderFocus:   "#7E9CD8",
		Text:          "#DCD7BA",
		Muted:         "#C8C093",
		Faint:         "#727169",
		Accent:        "#7E9CD8",
		Success:       "#98BB6C",
		Warning:       "#E6C384",
		Danger:        "#E46876",
		Info:          "#7FB4CA",
	},
	{
		// Tailwind slate and sky
		Name:          "Slate",
		Background:    "#020617",
		Surface:       "#0f172a",
		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",
		Border:        "#334155",
		BorderMuted:   "#1e293b",
		BorderFocus:   "#38bdf8",
		Text:          "#f1f5f9",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Success:       "#22c55e",
		Warning:       "#f59e0b",
		Danger:        "#dc2626",
		Info:          "#06b6d4",
	},
}

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, t := range themes {
		if t.Name == current {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

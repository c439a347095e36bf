package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and base styles for the tree view. Styles are built
// from Renderer so tests can render without a terminal.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
}

// DefaultTheme returns a Dracula-inspired theme with light-mode fallbacks.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#5A5A8A", Dark: "#6272A4"},
		Muted:     lipgloss.AdaptiveColor{Light: "#A0A0A0", Dark: "#6272A4"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0B7285", Dark: "#8BE9FD"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"},
		Success:   lipgloss.AdaptiveColor{Light: "#2B8A3E", Dark: "#50FA7B"},
		Danger:    lipgloss.AdaptiveColor{Light: "#C92A2A", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"})
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E8E2FF", Dark: "#44475A"}).
		Bold(true)
	return t
}

package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary   = lipgloss.Color("#C9A0FF")
	success   = lipgloss.Color("#10B981")
	warning   = lipgloss.Color("#F59E0B")
	danger    = lipgloss.Color("#EF4444")
	textMuted = lipgloss.Color("#9CA3AF")
	textDim   = lipgloss.Color("#6B7280")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primary)

	trackStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(textMuted)

	dimStyle = lipgloss.NewStyle().Foreground(textDim)

	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(primary)

	errorStyle = lipgloss.NewStyle().Foreground(danger)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1)
)

func stateStyle(label string) lipgloss.Style {
	switch label {
	case "playing":
		return lipgloss.NewStyle().Foreground(success)
	case "paused", "stalled", "loading":
		return lipgloss.NewStyle().Foreground(warning)
	default:
		return mutedStyle
	}
}

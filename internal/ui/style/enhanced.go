package style

import (
	"github.com/charmbracelet/lipgloss"
)

// HeaderStyles provides styling for the price header
type HeaderStyles struct {
	Container lipgloss.Style
	Title     lipgloss.Style
	Label     lipgloss.Style
	Up        lipgloss.Style
	Down      lipgloss.Style
	Neutral   lipgloss.Style
	Active    lipgloss.Style
	Inactive  lipgloss.Style
}

// NewHeaderStyles creates header styles with the given palette
func NewHeaderStyles(palette Palette) HeaderStyles {
	return HeaderStyles{
		Container: lipgloss.NewStyle().
			Foreground(palette.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 2),

		Title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),

		Up: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		Down: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		Neutral: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Active: lipgloss.NewStyle().
			Foreground(palette.Success),

		Inactive: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true),
	}
}

// LogStyles provides styling for the compact log viewer
type LogStyles struct {
	Container lipgloss.Style
	Title     lipgloss.Style
	Entry     lipgloss.Style
	Timestamp lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Debug     lipgloss.Style
}

// NewLogStyles creates compact log viewer styles
func NewLogStyles(palette Palette) LogStyles {
	return LogStyles{
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(palette.Info).
			Bold(true),

		Entry: lipgloss.NewStyle().
			Foreground(palette.Text),

		Timestamp: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Error: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(palette.Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(palette.Info),

		Debug: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
	}
}

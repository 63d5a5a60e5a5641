package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(0, 0, 1, 0)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true)
)

// Layout styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(0, 1)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 1)
)

// Form styles
var (
	FormLabelStyle = lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			Margin(0, 1, 0, 0)

	FormInputStyle = lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted)

	FormInputFocusedStyle = lipgloss.NewStyle().
				Foreground(palette.Text).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary)

	FormErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Margin(0, 1)
)

// Status styles
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(palette.Warning).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)
)

// Trading styles
var (
	BuyStyle = lipgloss.NewStyle().
			Foreground(palette.Buy).
			Bold(true)

	SellStyle = lipgloss.NewStyle().
			Foreground(palette.Sell).
			Bold(true)

	HoldStyle = lipgloss.NewStyle().
			Foreground(palette.Warning).
			Bold(true)

	ProfitStyle = lipgloss.NewStyle().
			Foreground(palette.Success)

	LossStyle = lipgloss.NewStyle().
			Foreground(palette.Error)
)

// Help bar style
var (
	HelpStyle = lipgloss.NewStyle().
		Foreground(palette.TextMuted).
		Italic(true)
)

// AdaptiveJoinHorizontal stacks blocks vertically on narrow terminals.
func AdaptiveJoinHorizontal(width int, blocks ...string) string {
	if width < 100 {
		return lipgloss.JoinVertical(lipgloss.Left, blocks...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

// AdaptiveWidth returns percentage of width, or nearly all of it on narrow
// terminals.
func AdaptiveWidth(width, percentage int) int {
	if width < 100 {
		return width - 4
	}
	return (width * percentage) / 100
}

// SignedStyle picks the profit or loss style for v; zero is muted.
func SignedStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return ProfitStyle
	case v < 0:
		return LossStyle
	default:
		return MutedStyle
	}
}

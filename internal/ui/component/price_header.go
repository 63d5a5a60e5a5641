package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/pairdash/internal/reconcile"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

// PriceHeader shows the selected pair, its current price coloured by the
// direction of the last move, and the total profit of the listed orders.
type PriceHeader struct {
	label    string
	active   bool
	change   reconcile.Change
	total    float64
	updated  time.Time
	fetching bool
	style    style.HeaderStyles
	width    int
}

// NewPriceHeader creates a new price header component
func NewPriceHeader() *PriceHeader {
	return &PriceHeader{
		style: style.NewHeaderStyles(style.DefaultPalette()),
	}
}

// SetPair sets the pair caption and its active flag
func (ph *PriceHeader) SetPair(label string, active bool) *PriceHeader {
	ph.label = label
	ph.active = active
	return ph
}

// SetChange sets the current price and its delta
func (ph *PriceHeader) SetChange(change reconcile.Change) *PriceHeader {
	ph.change = change
	return ph
}

// SetTotalProfit sets the profit sum shown next to the price
func (ph *PriceHeader) SetTotalProfit(total float64) *PriceHeader {
	ph.total = total
	return ph
}

// SetUpdated sets the time of the last committed refresh
func (ph *PriceHeader) SetUpdated(t time.Time) *PriceHeader {
	ph.updated = t
	return ph
}

// SetFetching marks a refresh as running
func (ph *PriceHeader) SetFetching(fetching bool) *PriceHeader {
	ph.fetching = fetching
	return ph
}

// SetWidth sets the component width
func (ph *PriceHeader) SetWidth(width int) *PriceHeader {
	ph.width = width
	return ph
}

// View renders the header
func (ph *PriceHeader) View() string {
	label := ph.label
	if label == "" {
		label = "no pair selected"
	}

	status := ph.style.Inactive.Render("inactive")
	if ph.active {
		status = ph.style.Active.Render("active")
	}

	updated := "never"
	if !ph.updated.IsZero() {
		updated = ph.updated.Local().Format("15:04:05")
	}
	if ph.fetching {
		updated += " ⟳"
	}

	content := lipgloss.JoinHorizontal(
		lipgloss.Left,
		ph.style.Title.Render(label),
		" ", status,
		" | ",
		ph.style.Label.Render("price "), ph.renderPrice(),
		" | ",
		ph.style.Label.Render("profit "), style.SignedStyle(ph.total).Render(FormatSigned(ph.total)),
		" | ",
		ph.style.Label.Render("updated "+updated),
	)

	container := ph.style.Container
	if ph.width > 4 {
		container = container.Width(ph.width - 2)
	}
	return container.Render(content)
}

// renderPrice renders the price and its delta; an unknown price is a dash
func (ph *PriceHeader) renderPrice() string {
	if !ph.change.Known {
		return ph.style.Neutral.Render("—")
	}

	price := FormatPrice(ph.change.Current)
	switch ph.change.Direction {
	case reconcile.DirectionUp:
		return ph.style.Up.Render(fmt.Sprintf("%s ▲ %s", price, FormatSigned(ph.change.Delta)))
	case reconcile.DirectionDown:
		return ph.style.Down.Render(fmt.Sprintf("%s ▼ %s", price, FormatSigned(ph.change.Delta)))
	case reconcile.DirectionFlat:
		return ph.style.Neutral.Render(price + " =")
	default:
		return ph.style.Neutral.Render(price)
	}
}

// GetHeight returns the component height for layout calculations
func (ph *PriceHeader) GetHeight() int {
	return 3
}

package component

import (
	"github.com/shopspring/decimal"
)

const pricePlaces = 8

// FormatPrice renders a price without float noise and without trailing
// zeros, e.g. 0.00001234 or 131.5.
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).Round(pricePlaces).String()
}

// FormatSigned is FormatPrice with an explicit sign for positive values.
func FormatSigned(v float64) string {
	s := FormatPrice(v)
	if v > 0 {
		return "+" + s
	}
	return s
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width > 1 {
		return string(runes[:width-1]) + "…"
	}
	return string(runes[:width])
}

package component

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/pairdash/internal/model"
	"github.com/rovshanmuradov/pairdash/internal/reconcile"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

// Marker glyphs drawn under the price line.
const (
	BuyMarker  = '▲'
	SellMarker = '▼'
	BothMarker = '◆'
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// PriceChart draws the price line as block columns with a marker row for
// buys and sells underneath. When there are more prices than columns each
// column shows the last price of its bucket.
type PriceChart struct {
	line  []reconcile.Point
	buys  []reconcile.Point
	sells []reconcile.Point
	// truncated minute -> last line index in that minute
	minutes map[time.Time]int

	width  int
	height int

	lineStyle  lipgloss.Style
	axisStyle  lipgloss.Style
	buyStyle   lipgloss.Style
	sellStyle  lipgloss.Style
	bothStyle  lipgloss.Style
	emptyStyle lipgloss.Style
}

// NewPriceChart creates a chart of the given plot size
func NewPriceChart(width, height int) *PriceChart {
	palette := style.DefaultPalette()
	return &PriceChart{
		width:      width,
		height:     height,
		lineStyle:  lipgloss.NewStyle().Foreground(palette.Primary),
		axisStyle:  lipgloss.NewStyle().Foreground(palette.TextMuted),
		buyStyle:   lipgloss.NewStyle().Foreground(palette.Buy).Bold(true),
		sellStyle:  lipgloss.NewStyle().Foreground(palette.Sell).Bold(true),
		bothStyle:  lipgloss.NewStyle().Foreground(palette.Both).Bold(true),
		emptyStyle: lipgloss.NewStyle().Foreground(palette.TextMuted).Italic(true),
	}
}

// SetDataset replaces the plotted data
func (c *PriceChart) SetDataset(d reconcile.Dataset) *PriceChart {
	c.line = d.PriceLine
	c.buys = d.Buys
	c.sells = d.Sells
	c.minutes = make(map[time.Time]int, len(d.PriceLine))
	for i, p := range d.PriceLine {
		c.minutes[model.TruncateMinute(p.X)] = i
	}
	return c
}

// SetSize sets the plot size; the axis labels come on top of the width
func (c *PriceChart) SetSize(width, height int) *PriceChart {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.width = width
	c.height = height
	return c
}

// Columns returns how many plot columns the current data occupies
func (c *PriceChart) Columns() int {
	if len(c.line) < c.width {
		return len(c.line)
	}
	return c.width
}

// View renders the chart
func (c *PriceChart) View() string {
	if len(c.line) == 0 {
		return c.emptyStyle.Render("no price data")
	}

	values := c.columnValues()
	lo, hi := minMax(values)
	top, bottom := FormatPrice(hi), FormatPrice(lo)
	labelWidth := lipgloss.Width(top)
	if w := lipgloss.Width(bottom); w > labelWidth {
		labelWidth = w
	}
	blank := strings.Repeat(" ", labelWidth)

	rows := c.plotRows(values, lo, hi)
	var b strings.Builder
	for i, row := range rows {
		label := blank
		switch i {
		case 0:
			label = padLeft(top, labelWidth)
		case len(rows) - 1:
			label = padLeft(bottom, labelWidth)
		}
		b.WriteString(c.axisStyle.Render(label + " ┤"))
		b.WriteString(c.lineStyle.Render(row))
		b.WriteString("\n")
	}

	b.WriteString(c.axisStyle.Render(blank + " └"))
	b.WriteString(c.renderMarkers(c.markerRow(len(values))))
	b.WriteString("\n")
	b.WriteString(c.axisStyle.Render(blank + "  " + c.timeAxis(len(values))))
	return b.String()
}

// columnValues buckets the price line into at most width columns
func (c *PriceChart) columnValues() []float64 {
	n := len(c.line)
	cols := c.Columns()
	values := make([]float64, cols)
	for col := 0; col < cols; col++ {
		last := (col+1)*n/cols - 1
		values[col] = c.line[last].Y
	}
	return values
}

// column maps a price line index to its plot column
func (c *PriceChart) column(index int) int {
	n := len(c.line)
	cols := c.Columns()
	if n <= cols {
		return index
	}
	// smallest col whose bucket end (col+1)*n/cols is past index
	return ((index+1)*cols+n-1)/n - 1
}

// plotRows renders values as height rows of eighth blocks, top row first
func (c *PriceChart) plotRows(values []float64, lo, hi float64) []string {
	levels := c.height * len(sparkChars)
	heights := make([]int, len(values))
	for i, v := range values {
		if hi == lo {
			heights[i] = levels / 2
		} else {
			heights[i] = int((v-lo)/(hi-lo)*float64(levels-1)) + 1
		}
	}

	rows := make([]string, c.height)
	for r := 0; r < c.height; r++ {
		base := (c.height - 1 - r) * len(sparkChars)
		var row strings.Builder
		for _, h := range heights {
			fill := h - base
			switch {
			case fill >= len(sparkChars):
				row.WriteRune(sparkChars[len(sparkChars)-1])
			case fill <= 0:
				row.WriteRune(' ')
			default:
				row.WriteRune(sparkChars[fill-1])
			}
		}
		rows[r] = row.String()
	}
	return rows
}

// markerRow places buy and sell markers under the column of the price
// sampled in the same minute. Markers with no such minute are skipped.
func (c *PriceChart) markerRow(cols int) []rune {
	row := []rune(strings.Repeat(" ", cols))
	place := func(points []reconcile.Point, glyph rune) {
		for _, p := range points {
			i, ok := c.indexOf(p.X)
			if !ok {
				continue
			}
			col := c.column(i)
			switch row[col] {
			case ' ', glyph:
				row[col] = glyph
			default:
				row[col] = BothMarker
			}
		}
	}
	place(c.buys, BuyMarker)
	place(c.sells, SellMarker)
	return row
}

func (c *PriceChart) indexOf(t time.Time) (int, bool) {
	i, ok := c.minutes[model.TruncateMinute(t)]
	return i, ok
}

func (c *PriceChart) renderMarkers(row []rune) string {
	var b strings.Builder
	for _, r := range row {
		switch r {
		case BuyMarker:
			b.WriteString(c.buyStyle.Render(string(r)))
		case SellMarker:
			b.WriteString(c.sellStyle.Render(string(r)))
		case BothMarker:
			b.WriteString(c.bothStyle.Render(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// timeAxis prints the first and last minute under the plot
func (c *PriceChart) timeAxis(cols int) string {
	first := c.line[0].X.Format("15:04")
	last := c.line[len(c.line)-1].X.Format("15:04")
	gap := cols - len(first) - len(last)
	if gap < 1 {
		return first
	}
	return first + strings.Repeat(" ", gap) + last
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func padLeft(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

// Package reconcile aligns a price series with the order list fetched for
// the same pair and derives everything the dashboard draws: the price line,
// buy/sell markers, per-order profit and the total.
//
// Profit is absolute, not per-unit. Order and sell prices are the value of
// the whole fill; the series price is per unit. So a closed order earns
// last_sell.price - order.price and an open one is marked to market as
// current*amount - order.price.
package reconcile

import (
	"time"

	"github.com/rovshanmuradov/pairdash/internal/model"
	"github.com/shopspring/decimal"
)

// Point is one chart coordinate.
type Point struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// Row is the table projection of one order.
type Row struct {
	OrderID   int       `json:"order_id" yaml:"order_id"`
	Created   time.Time `json:"created" yaml:"created"`
	Token     string    `json:"token" yaml:"token"`
	Amount    float64   `json:"amount" yaml:"amount"`
	BuyPrice  float64   `json:"buy_price" yaml:"buy_price"`
	SellPrice float64   `json:"sell_price" yaml:"sell_price"`
	Closed    bool      `json:"closed" yaml:"closed"`
	Profit    float64   `json:"profit" yaml:"profit"`
	// Priced is false for an open order when no current price is known.
	Priced  bool `json:"priced" yaml:"priced"`
	OnChart bool `json:"on_chart" yaml:"on_chart"`
}

// Dataset is the full derived state for one refresh.
type Dataset struct {
	Label        string
	PriceLine    []Point
	Buys         []Point
	Sells        []Point
	Rows         []Row
	CurrentPrice float64
	HasPrice     bool
	TotalProfit  float64
	DroppedBuys  int
	DroppedSells int
}

// Empty reports whether there is nothing to draw.
func (d Dataset) Empty() bool {
	return len(d.PriceLine) == 0 && len(d.Rows) == 0
}

// OpenRows returns the rows still waiting for a sell.
func (d Dataset) OpenRows() []Row {
	open := make([]Row, 0, len(d.Rows))
	for _, r := range d.Rows {
		if !r.Closed {
			open = append(open, r)
		}
	}
	return open
}

// Reconcile derives a Dataset. It does no I/O and never panics on empty
// input; calling it twice with the same arguments yields equal results.
func Reconcile(series model.PriceSeries, orders []model.Order, label string) Dataset {
	ds := Dataset{
		Label:     label,
		PriceLine: make([]Point, 0, series.Len()),
		Buys:      make([]Point, 0, len(orders)),
		Sells:     make([]Point, 0),
		Rows:      make([]Row, 0, len(orders)),
	}

	n := series.Len()
	if len(series.Created) < n {
		n = len(series.Created)
	}

	available := make(map[time.Time]struct{}, n)
	for i := 0; i < n; i++ {
		ds.PriceLine = append(ds.PriceLine, Point{X: series.Created[i], Y: series.Prices[i]})
		available[model.TruncateMinute(series.Created[i])] = struct{}{}
	}

	if n > 0 {
		ds.CurrentPrice = series.Prices[n-1]
		ds.HasPrice = true
	}

	total := decimal.Zero
	for _, o := range orders {
		_, onChart := available[model.TruncateMinute(o.Created)]
		if onChart {
			ds.Buys = append(ds.Buys, Point{X: o.Created, Y: o.Price})
		} else {
			ds.DroppedBuys++
		}

		for _, s := range o.Sells {
			if _, ok := available[model.TruncateMinute(s.Created)]; ok {
				ds.Sells = append(ds.Sells, Point{X: s.Created, Y: s.Price})
			} else {
				ds.DroppedSells++
			}
		}

		profit, priced := Profit(o, ds.CurrentPrice, ds.HasPrice)
		total = total.Add(profit)

		row := Row{
			OrderID:  o.ID,
			Created:  o.Created,
			Token:    o.Token,
			Amount:   o.Amount,
			BuyPrice: o.Price,
			Closed:   !o.IsOpen(),
			Profit:   profit.InexactFloat64(),
			Priced:   priced,
			OnChart:  onChart,
		}
		if last, ok := o.LastSell(); ok {
			row.SellPrice = last.Price
		}
		ds.Rows = append(ds.Rows, row)
	}

	ds.TotalProfit = total.InexactFloat64()
	return ds
}

// Profit returns the realized profit of a closed order or the mark-to-market
// profit of an open one. The second result is false when an open order
// could not be priced because no current price is known.
func Profit(o model.Order, current float64, hasCurrent bool) (decimal.Decimal, bool) {
	cost := decimal.NewFromFloat(o.Price)

	if last, ok := o.LastSell(); ok {
		return decimal.NewFromFloat(last.Price).Sub(cost), true
	}
	if !hasCurrent {
		return decimal.Zero, false
	}
	value := decimal.NewFromFloat(current).Mul(decimal.NewFromFloat(o.Amount))
	return value.Sub(cost), true
}

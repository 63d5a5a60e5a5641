package reconcile

import (
	"testing"
	"time"

	"github.com/rovshanmuradov/pairdash/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func minute(m, s int) time.Time {
	return base.Add(time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

func testSeries(prices ...float64) model.PriceSeries {
	s := model.PriceSeries{}
	for i, p := range prices {
		s.Created = append(s.Created, minute(i, 7))
		s.Prices = append(s.Prices, p)
	}
	return s
}

func TestReconcileLineKeepsEveryPoint(t *testing.T) {
	series := testSeries(1, 2, 3, 4, 5)

	ds := Reconcile(series, nil, "USDC / SOL")

	require.Len(t, ds.PriceLine, 5)
	for i, p := range ds.PriceLine {
		assert.Equal(t, series.Created[i], p.X)
		assert.Equal(t, series.Prices[i], p.Y)
	}
	assert.True(t, ds.HasPrice)
	assert.Equal(t, 5.0, ds.CurrentPrice)
	assert.Equal(t, "USDC / SOL", ds.Label)
}

func TestReconcileDropsMarkersWithoutMatchingMinute(t *testing.T) {
	series := testSeries(10, 11, 12) // minutes 0..2

	orders := []model.Order{
		{ID: 1, Price: 10, Amount: 1, Created: minute(0, 45)},
		{ID: 2, Price: 11, Amount: 1, Created: minute(7, 0)}, // no price that minute
		{
			ID: 3, Price: 12, Amount: 1, Created: minute(2, 1),
			Sells: []model.Sell{
				{Price: 13, Created: minute(2, 59)},
				{Price: 14, Created: minute(9, 0)}, // dropped
			},
		},
	}

	ds := Reconcile(series, orders, "")

	assert.Len(t, ds.Buys, 2)
	assert.Equal(t, 1, ds.DroppedBuys)
	assert.Len(t, ds.Sells, 1)
	assert.Equal(t, 1, ds.DroppedSells)
	assert.Equal(t, Point{X: minute(2, 59), Y: 13}, ds.Sells[0])

	// Dropped orders stay in the table.
	require.Len(t, ds.Rows, 3)
	assert.False(t, ds.Rows[1].OnChart)
	assert.True(t, ds.Rows[0].OnChart)
}

func TestReconcileMarkerCountNeverExceedsOrders(t *testing.T) {
	series := testSeries(1, 1, 1, 1)
	var orders []model.Order
	for i := 0; i < 20; i++ {
		orders = append(orders, model.Order{ID: i, Price: 1, Amount: 1, Created: minute(i%6, i)})
	}

	ds := Reconcile(series, orders, "")

	assert.Len(t, ds.PriceLine, 4)
	assert.LessOrEqual(t, len(ds.Buys), len(orders))
	assert.Equal(t, len(orders), len(ds.Buys)+ds.DroppedBuys)
}

func TestReconcileIdempotent(t *testing.T) {
	series := testSeries(100, 110, 120)
	orders := []model.Order{
		{ID: 1, Price: 100, Amount: 2, Created: minute(0, 0)},
		{ID: 2, Price: 100, Amount: 2, Created: minute(1, 0), Sells: []model.Sell{{Price: 130, Created: minute(2, 0)}}},
	}

	first := Reconcile(series, orders, "A")
	second := Reconcile(series, orders, "A")

	assert.Equal(t, first, second)
}

func TestReconcileDoesNotAliasInput(t *testing.T) {
	series := testSeries(1, 2)
	ds := Reconcile(series, nil, "")

	series.Prices[0] = 99
	assert.Equal(t, 1.0, ds.PriceLine[0].Y)
}

func TestReconcileEmptyInput(t *testing.T) {
	ds := Reconcile(model.PriceSeries{}, nil, "")

	assert.True(t, ds.Empty())
	assert.Empty(t, ds.Rows)
	assert.Empty(t, ds.Buys)
	assert.Empty(t, ds.Sells)
	assert.Zero(t, ds.TotalProfit)
	assert.False(t, ds.HasPrice)
}

func TestReconcileMismatchedSeriesUsesShorterArray(t *testing.T) {
	series := model.PriceSeries{Created: []time.Time{minute(0, 0)}, Prices: []float64{1, 2}}

	ds := Reconcile(series, nil, "")

	assert.Len(t, ds.PriceLine, 1)
	assert.Equal(t, 1.0, ds.CurrentPrice)
}

func TestProfitClosedOrder(t *testing.T) {
	order := model.Order{Price: 100, Amount: 2, Sells: []model.Sell{{Price: 130}}}

	profit, priced := Profit(order, 0, false)

	assert.True(t, priced)
	assert.Equal(t, 30.0, profit.InexactFloat64())
}

func TestProfitClosedOrderUsesLastSell(t *testing.T) {
	order := model.Order{Price: 100, Amount: 2, Sells: []model.Sell{{Price: 90}, {Price: 125}}}

	profit, _ := Profit(order, 500, true)

	assert.Equal(t, 25.0, profit.InexactFloat64())
}

func TestProfitOpenOrderMarkToMarket(t *testing.T) {
	order := model.Order{Price: 100, Amount: 2}

	profit, priced := Profit(order, 120, true)

	assert.True(t, priced)
	assert.Equal(t, 140.0, profit.InexactFloat64())
}

func TestProfitOpenOrderWithoutPrice(t *testing.T) {
	profit, priced := Profit(model.Order{Price: 100, Amount: 2}, 0, false)

	assert.False(t, priced)
	assert.True(t, profit.IsZero())
}

func TestReconcileTotalProfit(t *testing.T) {
	series := testSeries(100, 120)
	orders := []model.Order{
		{ID: 1, Price: 100, Amount: 2, Created: minute(0, 0), Sells: []model.Sell{{Price: 130, Created: minute(1, 0)}}},
		{ID: 2, Price: 100, Amount: 2, Created: minute(1, 0)},
		{ID: 3, Price: 0.1, Amount: 1, Created: minute(1, 0), Sells: []model.Sell{{Price: 0.3, Created: minute(1, 0)}}},
	}

	ds := Reconcile(series, orders, "")

	require.Len(t, ds.Rows, 3)
	assert.Equal(t, 30.0, ds.Rows[0].Profit)
	assert.Equal(t, 130.0, ds.Rows[0].SellPrice)
	assert.True(t, ds.Rows[0].Closed)
	assert.Equal(t, 140.0, ds.Rows[1].Profit)
	assert.False(t, ds.Rows[1].Closed)
	assert.InDelta(t, 0.2, ds.Rows[2].Profit, 1e-12)
	assert.Equal(t, 170.2, ds.TotalProfit)
	assert.Len(t, ds.OpenRows(), 1)
}

func TestPriceChange(t *testing.T) {
	prev := 10.0

	assert.Equal(t, Change{}, PriceChange(&prev, 0, false))

	first := PriceChange(nil, 10, true)
	assert.Equal(t, DirectionNone, first.Direction)
	assert.True(t, first.Known)

	up := PriceChange(&prev, 12.5, true)
	assert.Equal(t, DirectionUp, up.Direction)
	assert.Equal(t, 2.5, up.Delta)

	down := PriceChange(&prev, 9, true)
	assert.Equal(t, DirectionDown, down.Direction)

	flat := PriceChange(&prev, 10, true)
	assert.Equal(t, DirectionFlat, flat.Direction)
	assert.Equal(t, "flat", flat.Direction.String())
}

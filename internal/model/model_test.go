package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceSeriesDecodeCreated(t *testing.T) {
	payload := `{"created":["2024-05-01T12:00:05.123456","2024-05-01T12:01:10+00:00"],"prices":[1.5,1.6]}`

	var s PriceSeries
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	require.Equal(t, 2, s.Len())
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 5, 123456000, time.UTC), s.Created[0])
	assert.True(t, s.Created[1].Equal(time.Date(2024, 5, 1, 12, 1, 10, 0, time.UTC)))

	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, 1.6, last)
}

func TestPriceSeriesDecodeTimestamps(t *testing.T) {
	payload := `{"timestamps":[1714564800,1714564860],"prices":[10,11]}`

	var s PriceSeries
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	require.Len(t, s.Created, 2)
	assert.Equal(t, int64(1714564860), s.Created[1].Unix())
}

func TestPriceSeriesDecodeRejectsLengthMismatch(t *testing.T) {
	payload := `{"created":["2024-05-01T12:00:00"],"prices":[1,2]}`

	var s PriceSeries
	err := json.Unmarshal([]byte(payload), &s)
	assert.ErrorIs(t, err, ErrSeriesLength)
}

func TestPriceSeriesValidateChronological(t *testing.T) {
	now := time.Now()
	s := PriceSeries{
		Created: []time.Time{now, now.Add(-time.Minute)},
		Prices:  []float64{1, 2},
	}
	assert.Error(t, s.Validate())
}

func TestEmptySeries(t *testing.T) {
	var s PriceSeries
	require.NoError(t, json.Unmarshal([]byte(`{"created":[],"prices":[]}`), &s))

	_, ok := s.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestOrderDecode(t *testing.T) {
	payload := `{
		"id": 7, "created": "2024-05-01T12:00:30", "status": "OK", "token": "SOL",
		"action": "BUY", "amount": 2, "price": 100,
		"sells": [{"id": 1, "created": "2024-05-01T13:00:00", "price": 130, "amount": 2}]
	}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(payload), &o))

	assert.Equal(t, 7, o.ID)
	assert.Equal(t, "SOL", o.Token)
	assert.False(t, o.IsOpen())
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC), o.Created)

	last, ok := o.LastSell()
	require.True(t, ok)
	assert.Equal(t, 130.0, last.Price)
	assert.Equal(t, time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC), last.Created)
}

func TestOrderDecodeWithoutSells(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"created":"2024-05-01T12:00:00","price":1,"amount":1}`), &o))

	assert.True(t, o.IsOpen())
	assert.NotNil(t, o.Sells)
	_, ok := o.LastSell()
	assert.False(t, ok)
}

func TestPairDecodeNullableFlags(t *testing.T) {
	payload := `{
		"id": 3, "is_active": true,
		"from_token": {"id": 1, "name": "USDC"}, "to_token": {"id": 2, "name": "SOL"},
		"trading_setting": {"id": 9, "name": "default", "take_profit_percentage": 5,
			"auto_buy_enabled": null, "auto_sell_enabled": true}
	}`

	var p TradingPair
	require.NoError(t, json.Unmarshal([]byte(payload), &p))

	assert.Equal(t, "USDC / SOL", p.Label())
	require.NotNil(t, p.TradingSetting)
	assert.False(t, p.TradingSetting.AutoBuyEnabled)
	assert.True(t, p.TradingSetting.AutoSellEnabled)
	assert.Equal(t, 5.0, p.TradingSetting.TakeProfitPercentage)
}

func TestTruncateMinute(t *testing.T) {
	a := time.Date(2024, 5, 1, 12, 0, 59, 999, time.UTC)
	b := time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC)
	c := time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC)

	assert.Equal(t, TruncateMinute(a), TruncateMinute(b))
	assert.NotEqual(t, TruncateMinute(a), TruncateMinute(c))
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}

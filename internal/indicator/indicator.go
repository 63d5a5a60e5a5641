// Package indicator computes the EMA and RSI values the trading settings of a
// pair refer to, so the dashboard can show what the automated trader sees.
package indicator

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/pairdash/internal/model"
)

// ErrNotEnoughData is returned when the series is shorter than the period.
var ErrNotEnoughData = errors.New("not enough data")

// Signal is the coarse trading hint derived from the indicators.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// EMA seeds with the simple average of the first period values and then
// applies ema = (p - ema)*alpha + ema with alpha = 2/(period+1).
func EMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("invalid EMA period %d", period)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("EMA(%d) over %d points: %w", period, len(prices), ErrNotEnoughData)
	}

	sum := 0.0
	for _, p := range prices[:period] {
		sum += p
	}
	ema := sum / float64(period)
	alpha := 2 / (float64(period) + 1)

	for _, p := range prices[period:] {
		ema = (p-ema)*alpha + ema
	}
	return ema, nil
}

// RSI seeds average gain/loss over the first period changes and then applies
// Wilder smoothing over the rest. It is 100 when the average loss is zero.
func RSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("invalid RSI period %d", period)
	}
	// At least one smoothing step is required to produce a value.
	if len(prices) < period+2 {
		return 0, fmt.Errorf("RSI(%d) over %d points: %w", period, len(prices), ErrNotEnoughData)
	}

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	var rsi float64
	for i := period; i < len(prices)-1; i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)

		if avgLoss == 0 {
			rsi = 100
		} else {
			rs := avgGain / avgLoss
			rsi = 100 - 100/(1+rs)
		}
	}
	return rsi, nil
}

// Snapshot holds the indicator values for one refresh.
type Snapshot struct {
	ShortEMA float64
	LongEMA  float64
	RSI      float64
	Signal   Signal
	Ready    bool
}

// Compute evaluates the indicators configured by setting. A nil setting or a
// short series yields a snapshot with Ready=false rather than an error.
func Compute(series model.PriceSeries, setting *model.TradingSetting) Snapshot {
	if setting == nil {
		return Snapshot{Signal: SignalHold}
	}

	short, errShort := EMA(series.Prices, setting.ShortEMATimePeriod)
	long, errLong := EMA(series.Prices, setting.LongEMATimePeriod)
	rsi, errRSI := RSI(series.Prices, setting.RSITimePeriod)
	if errShort != nil || errLong != nil || errRSI != nil {
		return Snapshot{Signal: SignalHold}
	}

	s := Snapshot{ShortEMA: short, LongEMA: long, RSI: rsi, Signal: SignalHold, Ready: true}
	switch {
	case rsi > float64(setting.RSISellThreshold):
		s.Signal = SignalSell
	case short > long && rsi < float64(setting.RSIBuyThreshold):
		s.Signal = SignalBuy
	}
	return s
}

// internal/model/model.go
package model

import (
	"fmt"
	"time"
)

// Token is one side of a trading pair.
type Token struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Decimals int64  `json:"decimals,omitempty"`
}

// TradingSetting is the per-pair automated trading configuration.
type TradingSetting struct {
	ID                       int     `json:"id"`
	Name                     string  `json:"name"`
	TakeProfitPercentage     float64 `json:"take_profit_percentage"`
	StopLossPercentage       float64 `json:"stop_loss_percentage"`
	ShortEMATimePeriod       int     `json:"short_ema_time_period"`
	LongEMATimePeriod        int     `json:"long_ema_time_period"`
	RSIBuyThreshold          int     `json:"rsi_buy_threshold"`
	RSISellThreshold         int     `json:"rsi_sell_threshold"`
	RSITimePeriod            int     `json:"rsi_time_period"`
	BuyAmount                float64 `json:"buy_amount"`
	BuyMaxOrdersThreshold    int     `json:"buy_max_orders_threshold"`
	BuyMaxOrdersInLastPeriod int     `json:"buy_max_orders_in_last_period"`
	BuyCheckPeriodMinutes    int     `json:"buy_check_period_minutes"`
	AutoBuyEnabled           bool    `json:"auto_buy_enabled"`
	AutoSellEnabled          bool    `json:"auto_sell_enabled"`
}

// TradingPair is a tradable (from, to) token combination.
type TradingPair struct {
	ID             int             `json:"id"`
	FromToken      Token           `json:"from_token"`
	ToToken        Token           `json:"to_token"`
	IsActive       bool            `json:"is_active"`
	TradingSetting *TradingSetting `json:"trading_setting"`
}

// Label returns the "FROM / TO" caption used in selectors and chart titles.
func (p TradingPair) Label() string {
	return fmt.Sprintf("%s / %s", p.FromToken.Name, p.ToToken.Name)
}

// Sell is a closing fill against a buy order.
type Sell struct {
	ID      int       `json:"id"`
	Price   float64   `json:"price"`
	Created time.Time `json:"created"`
	Amount  float64   `json:"amount"`
}

// Order is a buy fill, optionally closed by one or more sells.
type Order struct {
	ID      int       `json:"id"`
	Token   string    `json:"token"`
	Amount  float64   `json:"amount"`
	Price   float64   `json:"price"`
	Created time.Time `json:"created"`
	Status  string    `json:"status,omitempty"`
	Action  string    `json:"action,omitempty"`
	Sells   []Sell    `json:"sells"`
}

// IsOpen reports whether the order has no sells yet.
func (o Order) IsOpen() bool {
	return len(o.Sells) == 0
}

// LastSell returns the most recent closing fill.
func (o Order) LastSell() (Sell, bool) {
	if len(o.Sells) == 0 {
		return Sell{}, false
	}
	return o.Sells[len(o.Sells)-1], true
}

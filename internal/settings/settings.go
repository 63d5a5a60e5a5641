// Package settings mirrors a pair's trading setting into editable form
// fields and turns submitted fields back into an update request.
package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/model"
)

// Kind tells how a field value is parsed.
type Kind int

const (
	KindDecimal Kind = iota
	KindInteger
	KindBool
)

// Field names, in display order.
const (
	TakeProfit            = "take-profit"
	StopLoss              = "stop-loss"
	ShortEMA              = "short-ema"
	LongEMA               = "long-ema"
	RSIBuy                = "rsi-buy"
	RSISell               = "rsi-sell"
	RSIPeriod             = "rsi-period"
	BuyAmount             = "buy-amount"
	MaxOrders             = "max-orders"
	MaxOrdersPeriod       = "max-orders-period"
	MaxOrdersPeriodAmount = "max-orders-period-amount"
	AutoBuy               = "auto-buy"
	AutoSell              = "auto-sell"
)

// Field is one named form value.
type Field struct {
	Name  string
	Label string
	Kind  Kind
	Value string
}

// Form is the ordered set of setting fields for one trading setting.
type Form struct {
	SettingID int
	Fields    []Field
}

type fieldSpec struct {
	name  string
	label string
	kind  Kind
	get   func(*model.TradingSetting) string
}

var fieldSpecs = []fieldSpec{
	{TakeProfit, "Take profit %", KindDecimal, func(s *model.TradingSetting) string { return formatFloat(s.TakeProfitPercentage) }},
	{StopLoss, "Stop loss %", KindDecimal, func(s *model.TradingSetting) string { return formatFloat(s.StopLossPercentage) }},
	{ShortEMA, "Short EMA period", KindInteger, func(s *model.TradingSetting) string { return strconv.Itoa(s.ShortEMATimePeriod) }},
	{LongEMA, "Long EMA period", KindInteger, func(s *model.TradingSetting) string { return strconv.Itoa(s.LongEMATimePeriod) }},
	{RSIBuy, "RSI buy threshold", KindInteger, func(s *model.TradingSetting) string { return strconv.Itoa(s.RSIBuyThreshold) }},
	{RSISell, "RSI sell threshold", KindInteger, func(s *model.TradingSetting) string { return strconv.Itoa(s.RSISellThreshold) }},
	{RSIPeriod, "RSI period", KindInteger, func(s *model.TradingSetting) string { return strconv.Itoa(s.RSITimePeriod) }},
	{BuyAmount, "Buy amount", KindDecimal, func(s *model.TradingSetting) string { return formatFloat(s.BuyAmount) }},
	{MaxOrders, "Max open orders", KindInteger, func(s *model.TradingSetting) string { return strconv.Itoa(s.BuyMaxOrdersThreshold) }},
	{MaxOrdersPeriod, "Check period (min)", KindInteger, func(s *model.TradingSetting) string { return strconv.Itoa(s.BuyCheckPeriodMinutes) }},
	{MaxOrdersPeriodAmount, "Max orders in period", KindInteger, func(s *model.TradingSetting) string { return strconv.Itoa(s.BuyMaxOrdersInLastPeriod) }},
	{AutoBuy, "Auto buy", KindBool, func(s *model.TradingSetting) string { return strconv.FormatBool(s.AutoBuyEnabled) }},
	{AutoSell, "Auto sell", KindBool, func(s *model.TradingSetting) string { return strconv.FormatBool(s.AutoSellEnabled) }},
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FromSetting copies every setting value into a form. A nil setting yields
// an empty form with no fields.
func FromSetting(s *model.TradingSetting) Form {
	if s == nil {
		return Form{}
	}
	form := Form{SettingID: s.ID, Fields: make([]Field, 0, len(fieldSpecs))}
	for _, spec := range fieldSpecs {
		form.Fields = append(form.Fields, Field{
			Name:  spec.name,
			Label: spec.label,
			Kind:  spec.kind,
			Value: spec.get(s),
		})
	}
	return form
}

// Empty reports whether the form holds no fields.
func (f Form) Empty() bool {
	return len(f.Fields) == 0
}

// Get returns the value of a named field.
func (f Form) Get(name string) (string, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// Set replaces the value of a named field.
func (f *Form) Set(name, value string) error {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			f.Fields[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("unknown field %q", name)
}

// Clone returns a copy that shares no storage with f.
func (f Form) Clone() Form {
	out := Form{SettingID: f.SettingID}
	if f.Fields != nil {
		out.Fields = append([]Field(nil), f.Fields...)
	}
	return out
}

type parser struct {
	form Form
	errs error
}

func (p *parser) decimal(name string) float64 {
	raw, _ := p.form.Get(name)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		p.errs = multierr.Append(p.errs, fmt.Errorf("%s: %q is not a number", name, raw))
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		p.errs = multierr.Append(p.errs, fmt.Errorf("%s: %q is not a finite number", name, raw))
		return 0
	}
	if v < 0 {
		p.errs = multierr.Append(p.errs, fmt.Errorf("%s: must not be negative", name))
	}
	return v
}

func (p *parser) integer(name string) int {
	raw, _ := p.form.Get(name)
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.errs = multierr.Append(p.errs, fmt.Errorf("%s: %q is not a whole number", name, raw))
		return 0
	}
	if v < 0 {
		p.errs = multierr.Append(p.errs, fmt.Errorf("%s: must not be negative", name))
	}
	return v
}

func (p *parser) boolean(name string) bool {
	raw, _ := p.form.Get(name)
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		p.errs = multierr.Append(p.errs, fmt.Errorf("%s: %q is not true or false", name, raw))
	}
	return v
}

func (p *parser) check(ok bool, format string, args ...interface{}) {
	if !ok {
		p.errs = multierr.Append(p.errs, fmt.Errorf(format, args...))
	}
}

// Request parses and validates the form. Every problem is reported, joined
// with multierr.
func (f Form) Request() (api.UpdateSettingsRequest, error) {
	if f.Empty() {
		return api.UpdateSettingsRequest{}, fmt.Errorf("no trading setting loaded")
	}

	p := &parser{form: f}
	req := api.UpdateSettingsRequest{
		TakeProfitPercentage:     p.decimal(TakeProfit),
		StopLossPercentage:       p.decimal(StopLoss),
		ShortEMATimePeriod:       p.integer(ShortEMA),
		LongEMATimePeriod:        p.integer(LongEMA),
		RSIBuyThreshold:          p.integer(RSIBuy),
		RSISellThreshold:         p.integer(RSISell),
		RSITimePeriod:            p.integer(RSIPeriod),
		BuyAmount:                p.decimal(BuyAmount),
		BuyMaxOrdersThreshold:    p.integer(MaxOrders),
		BuyCheckPeriodMinutes:    p.integer(MaxOrdersPeriod),
		BuyMaxOrdersInLastPeriod: p.integer(MaxOrdersPeriodAmount),
		AutoBuyEnabled:           p.boolean(AutoBuy),
		AutoSellEnabled:          p.boolean(AutoSell),
	}

	p.check(req.RSIBuyThreshold <= 100, "%s: must be within 0..100", RSIBuy)
	p.check(req.RSISellThreshold <= 100, "%s: must be within 0..100", RSISell)
	p.check(req.ShortEMATimePeriod > 0, "%s: must be greater than zero", ShortEMA)
	p.check(req.LongEMATimePeriod > 0, "%s: must be greater than zero", LongEMA)
	p.check(req.RSITimePeriod > 0, "%s: must be greater than zero", RSIPeriod)
	p.check(req.BuyCheckPeriodMinutes > 0, "%s: must be greater than zero", MaxOrdersPeriod)
	if req.ShortEMATimePeriod > 0 && req.LongEMATimePeriod > 0 {
		p.check(req.ShortEMATimePeriod < req.LongEMATimePeriod,
			"%s: must be shorter than %s", ShortEMA, LongEMA)
	}

	if p.errs != nil {
		return api.UpdateSettingsRequest{}, p.errs
	}
	return req, nil
}

package dashboard

import (
	"time"

	"github.com/rovshanmuradov/pairdash/internal/indicator"
	"github.com/rovshanmuradov/pairdash/internal/model"
	"github.com/rovshanmuradov/pairdash/internal/reconcile"
	"github.com/rovshanmuradov/pairdash/internal/settings"
)

// ViewModel is everything the dashboard renders. Values returned by the
// Controller are copies and may be read without locking.
type ViewModel struct {
	Pairs        []model.TradingPair
	Selected     model.TradingPair
	HasSelection bool

	Dataset    reconcile.Dataset
	Change     reconcile.Change
	Indicators indicator.Snapshot
	Settings   settings.Form

	Limit  int
	Offset int

	LastRefresh time.Time
	Warning     string

	// Generation identifies the selection the data belongs to. It changes
	// on every Select.
	Generation uint64
}

// Label is the caption of the selected pair, or empty.
func (vm ViewModel) Label() string {
	if !vm.HasSelection {
		return ""
	}
	return vm.Selected.Label()
}

// Pair looks up a pair by id.
func (vm ViewModel) Pair(id int) (model.TradingPair, bool) {
	for _, p := range vm.Pairs {
		if p.ID == id {
			return p, true
		}
	}
	return model.TradingPair{}, false
}

func (vm ViewModel) clone() ViewModel {
	out := vm
	out.Pairs = append([]model.TradingPair(nil), vm.Pairs...)
	out.Selected = clonePair(vm.Selected)
	out.Dataset = cloneDataset(vm.Dataset)
	out.Settings = vm.Settings.Clone()
	return out
}

func clonePair(p model.TradingPair) model.TradingPair {
	if p.TradingSetting != nil {
		s := *p.TradingSetting
		p.TradingSetting = &s
	}
	return p
}

func cloneDataset(d reconcile.Dataset) reconcile.Dataset {
	out := d
	out.PriceLine = append([]reconcile.Point(nil), d.PriceLine...)
	out.Buys = append([]reconcile.Point(nil), d.Buys...)
	out.Sells = append([]reconcile.Point(nil), d.Sells...)
	out.Rows = append([]reconcile.Row(nil), d.Rows...)
	return out
}

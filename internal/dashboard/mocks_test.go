package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/model"
)

// MockAPI implements API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Pairs(ctx context.Context) ([]model.TradingPair, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.TradingPair), args.Error(1)
}

func (m *MockAPI) Prices(ctx context.Context, pairID int) (model.PriceSeries, error) {
	args := m.Called(ctx, pairID)
	return args.Get(0).(model.PriceSeries), args.Error(1)
}

func (m *MockAPI) Orders(ctx context.Context, pairID, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, pairID, limit, offset)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockAPI) Sell(ctx context.Context, req api.SellRequest) (*api.SellResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*api.SellResult)
	return result, args.Error(1)
}

func (m *MockAPI) UpdateSettings(ctx context.Context, settingsID int, req api.UpdateSettingsRequest) error {
	args := m.Called(ctx, settingsID, req)
	return args.Error(0)
}

func (m *MockAPI) ToggleActive(ctx context.Context, pairID int, isActive bool) error {
	args := m.Called(ctx, pairID, isActive)
	return args.Error(0)
}

type recordedRefresh struct {
	mu      sync.Mutex
	results []string
}

func (r *recordedRefresh) RecordRefresh(result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recordedRefresh) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.results...)
}

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testPairs() []model.TradingPair {
	return []model.TradingPair{
		{
			ID:        1,
			FromToken: model.Token{ID: 1, Name: "USDC"},
			ToToken:   model.Token{ID: 2, Name: "SOL"},
			IsActive:  true,
			TradingSetting: &model.TradingSetting{
				ID: 11, ShortEMATimePeriod: 2, LongEMATimePeriod: 3,
				RSIBuyThreshold: 30, RSISellThreshold: 70, RSITimePeriod: 2,
			},
		},
		{
			ID:        2,
			FromToken: model.Token{ID: 1, Name: "USDC"},
			ToToken:   model.Token{ID: 3, Name: "BONK"},
		},
	}
}

func testSeries(prices ...float64) model.PriceSeries {
	s := model.PriceSeries{}
	for i, p := range prices {
		s.Created = append(s.Created, base.Add(time.Duration(i)*time.Minute+5*time.Second))
		s.Prices = append(s.Prices, p)
	}
	return s
}

func testOrders() []model.Order {
	return []model.Order{
		{ID: 1, Token: "SOL", Amount: 2, Price: 100, Created: base, Sells: []model.Sell{
			{ID: 5, Price: 130, Created: base.Add(time.Minute)},
		}},
		{ID: 2, Token: "SOL", Amount: 2, Price: 100, Created: base.Add(time.Minute), Sells: []model.Sell{}},
	}
}

package screen

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/config"
	"github.com/rovshanmuradov/pairdash/internal/dashboard"
	"github.com/rovshanmuradov/pairdash/internal/export"
	"github.com/rovshanmuradov/pairdash/internal/logger"
	"github.com/rovshanmuradov/pairdash/internal/model"
)

// MockAPI implements dashboard.API
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

// fakeServices implements ui.ServiceProvider without running pollers
type fakeServices struct {
	controller *dashboard.Controller
	exporter   *export.Exporter
	logs       *logger.LogBuffer
	cfg        *config.Config

	mu       sync.Mutex
	watched  []uint64
	restarts int
	stops    int
}

func newFakeServices(t *testing.T, client dashboard.API) *fakeServices {
	t.Helper()
	cfg := config.Default()
	cfg.ExportDir = t.TempDir()
	return &fakeServices{
		controller: dashboard.NewController(client, zap.NewNop(), nil, 10),
		exporter:   export.NewExporter(zap.NewNop()),
		logs:       logger.NewLogBuffer(100),
		cfg:        cfg,
	}
}

func (f *fakeServices) GetDashboard() *dashboard.Controller { return f.controller }
func (f *fakeServices) GetExporter() *export.Exporter       { return f.exporter }
func (f *fakeServices) GetLogBuffer() *logger.LogBuffer     { return f.logs }
func (f *fakeServices) GetLogger() *zap.Logger              { return zap.NewNop() }
func (f *fakeServices) GetConfig() *config.Config           { return f.cfg }
func (f *fakeServices) GetContext() context.Context         { return context.Background() }

func (f *fakeServices) Watch(generation uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watched = append(f.watched, generation)
}

func (f *fakeServices) Restart() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
}

func (f *fakeServices) StopWatching() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
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
				ID:                       11,
				TakeProfitPercentage:     10,
				StopLossPercentage:       5,
				ShortEMATimePeriod:       2,
				LongEMATimePeriod:        3,
				RSIBuyThreshold:          30,
				RSISellThreshold:         70,
				RSITimePeriod:            2,
				BuyAmount:                1.5,
				BuyMaxOrdersThreshold:    3,
				BuyMaxOrdersInLastPeriod: 2,
				BuyCheckPeriodMinutes:    60,
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
		s.Created = append(s.Created, base.Add(time.Duration(i)*time.Minute))
		s.Prices = append(s.Prices, p)
	}
	return s
}

// testOrders holds one closed and one open order
func testOrders() []model.Order {
	return []model.Order{
		{ID: 1, Token: "SOL", Amount: 2, Price: 100, Created: base, Sells: []model.Sell{
			{ID: 5, Price: 130, Created: base.Add(time.Minute)},
		}},
		{ID: 2, Token: "SOL", Amount: 2, Price: 100, Created: base.Add(time.Minute), Sells: []model.Sell{}},
	}
}

// selectedServices returns services whose controller has pair 1 selected
// and refreshed once.
func selectedServices(t *testing.T) (*fakeServices, *MockAPI) {
	t.Helper()
	m := new(MockAPI)
	services := newFakeServices(t, m)

	m.On("Pairs", mock.Anything).Return(testPairs(), nil).Once()
	_, err := services.controller.LoadPairs(context.Background())
	require.NoError(t, err)
	_, err = services.controller.Select(1)
	require.NoError(t, err)

	m.On("Prices", mock.Anything, 1).Return(testSeries(110, 120), nil).Once()
	m.On("Orders", mock.Anything, 1, 10, 0).Return(testOrders(), nil).Once()
	_, err = services.controller.Refresh(context.Background())
	require.NoError(t, err)
	return services, m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "f3":
		return tea.KeyMsg{Type: tea.KeyF3}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// run executes a command and returns its message, or nil for a nil command
func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

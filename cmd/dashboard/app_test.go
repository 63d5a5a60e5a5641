package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/config"
	"github.com/rovshanmuradov/pairdash/internal/dashboard"
	"github.com/rovshanmuradov/pairdash/internal/export"
	"github.com/rovshanmuradov/pairdash/internal/logger"
	"github.com/rovshanmuradov/pairdash/internal/model"
	"github.com/rovshanmuradov/pairdash/internal/ui"
)

// stubAPI serves one pair without orders
type stubAPI struct{}

func (stubAPI) Pairs(context.Context) ([]model.TradingPair, error) {
	return []model.TradingPair{{
		ID:        1,
		FromToken: model.Token{Name: "USDC"},
		ToToken:   model.Token{Name: "SOL"},
	}}, nil
}

func (stubAPI) Prices(context.Context, int) (model.PriceSeries, error) {
	return model.PriceSeries{}, nil
}

func (stubAPI) Orders(context.Context, int, int, int) ([]model.Order, error) {
	return []model.Order{}, nil
}

func (stubAPI) Sell(context.Context, api.SellRequest) (*api.SellResult, error) {
	return &api.SellResult{}, nil
}

func (stubAPI) UpdateSettings(context.Context, int, api.UpdateSettingsRequest) error { return nil }
func (stubAPI) ToggleActive(context.Context, int, bool) error                      { return nil }

// idleServices is a ServiceProvider whose poller hooks do nothing
type idleServices struct {
	controller *dashboard.Controller
	logs       *logger.LogBuffer
	cfg        *config.Config
}

func newIdleServices() *idleServices {
	return &idleServices{
		controller: dashboard.NewController(stubAPI{}, zap.NewNop(), nil, 10),
		logs:       logger.NewLogBuffer(10),
		cfg:        config.Default(),
	}
}

func (s *idleServices) GetDashboard() *dashboard.Controller { return s.controller }
func (s *idleServices) GetExporter() *export.Exporter       { return export.NewExporter(zap.NewNop()) }
func (s *idleServices) GetLogBuffer() *logger.LogBuffer     { return s.logs }
func (s *idleServices) GetLogger() *zap.Logger              { return zap.NewNop() }
func (s *idleServices) GetConfig() *config.Config           { return s.cfg }
func (s *idleServices) GetContext() context.Context         { return context.Background() }
func (s *idleServices) Watch(uint64)                        {}
func (s *idleServices) Restart()                            {}
func (s *idleServices) StopWatching()                       {}

func TestAppNavigation(t *testing.T) {
	services := newIdleServices()
	app := NewAppModel(services, 0)
	require.NotNil(t, app.Init())
	assert.Equal(t, "Initializing...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, app.View(), "Trading pairs")

	_, err := services.controller.LoadPairs(context.Background())
	require.NoError(t, err)
	_, err = services.controller.Select(1)
	require.NoError(t, err)

	app.Update(ui.RouterMsg{To: ui.RouteDashboard})
	assert.Equal(t, 2, app.router.Depth())
	assert.Contains(t, app.View(), "USDC / SOL")

	app.Update(ui.RouterMsg{To: ui.RouteLogs})
	assert.Equal(t, 3, app.router.Depth())

	app.Update(ui.BackMsg{})
	assert.Equal(t, 2, app.router.Depth())

	app.Update(ui.RouterMsg{To: ui.RoutePairs})
	assert.Equal(t, 1, app.router.Depth())

	app.Update(ui.RouterMsg{To: ui.Route(42)})
	assert.Equal(t, 1, app.router.Depth())
}

func TestAppUnwrapsBusMessages(t *testing.T) {
	app := NewAppModel(newIdleServices(), 0)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	_, cmd := app.Update(ui.BusMsg{Msg: ui.SuccessMsg{Message: "bus works"}})
	assert.NotNil(t, cmd, "the bus listener is re-armed")
	assert.Contains(t, app.View(), "bus works")
}

func TestAppQuitsOnCtrlC(t *testing.T) {
	app := NewAppModel(newIdleServices(), 0)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

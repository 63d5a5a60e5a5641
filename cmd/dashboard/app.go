package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pairdash/internal/ui"
	"github.com/rovshanmuradov/pairdash/internal/ui/router"
	"github.com/rovshanmuradov/pairdash/internal/ui/screen"
)

// AppModel represents the main TUI application model
type AppModel struct {
	router   *router.Router
	services ui.ServiceProvider
	logger   *zap.Logger
	width    int
	height   int
}

// NewAppModel creates the application with the pair selector as root
// screen. A non-zero defaultPairID opens that pair right away.
func NewAppModel(services ui.ServiceProvider, defaultPairID int) *AppModel {
	return &AppModel{
		router:   router.New(screen.NewPairsScreen(services, defaultPairID)),
		services: services,
		logger:   services.GetLogger().Named("app"),
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.router.Init(),
		ui.ListenBus(),
	)
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cmds = append(cmds, m.forward(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmds = append(cmds, m.forward(msg))

	case ui.RouterMsg:
		cmds = append(cmds, m.handleNavigation(msg.To))

	case ui.BusMsg:
		// Continue listening for events
		cmds = append(cmds, m.forward(msg.Msg), ui.ListenBus())

	default:
		cmds = append(cmds, m.forward(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *AppModel) forward(msg tea.Msg) tea.Cmd {
	updatedRouter, cmd := m.router.Update(msg)
	m.router = updatedRouter.(*router.Router)
	return cmd
}

// handleNavigation handles navigation to different screens
func (m *AppModel) handleNavigation(route ui.Route) tea.Cmd {
	m.logger.Debug("Navigating", zap.Stringer("route", route))

	var newScreen router.Screen

	switch route {
	case ui.RoutePairs:
		return m.router.PopToRoot()

	case ui.RouteDashboard:
		newScreen = screen.NewDashboardScreen(m.services)

	case ui.RouteSettings:
		newScreen = screen.NewSettingsScreen(m.services)

	case ui.RouteLogs:
		newScreen = screen.NewLogsScreen(m.services)

	default:
		// Unknown route, stay on current screen
		return nil
	}

	return m.router.Push(newScreen)
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	return m.router.View()
}

package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/pairdash/internal/dashboard"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// BackMsg asks the router to return to the previous screen
type BackMsg struct{}

// PairsLoadedMsg carries the result of a pair list fetch
type PairsLoadedMsg struct {
	View dashboard.ViewModel
	Err  error
}

// SelectedMsg is sent after the dashboard switched to another pair
type SelectedMsg struct {
	View dashboard.ViewModel
	Err  error
}

// ActiveToggledMsg carries the result of an is_active flip
type ActiveToggledMsg struct {
	Active bool
	Err    error
}

// RefreshedMsg carries one settled refresh. Results whose generation is
// not the one on screen are dropped by the receiver.
type RefreshedMsg struct {
	Result dashboard.Result
}

// Generation returns the selection generation the result belongs to.
func (m RefreshedMsg) Generation() uint64 {
	return m.Result.View.Generation
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// SuccessMsg represents success conditions
type SuccessMsg struct {
	Message string
	Title   string
}

// Event Bus for UI communication
var (
	// Bus is the global event bus for UI communication
	Bus = make(chan tea.Msg, 1024)
)

// PublishError publishes an error message to the UI bus
func PublishError(err error, title string) {
	select {
	case Bus <- ErrorMsg{Error: err, Title: title}:
	default:
	}
}

// BusMsg wraps a message read from Bus. The receiver unwraps it and calls
// ListenBus again; only one listener should be pending at a time.
type BusMsg struct {
	Msg tea.Msg
}

// ListenBus returns a tea.Cmd that waits for the next bus message
func ListenBus() tea.Cmd {
	return func() tea.Msg {
		return BusMsg{Msg: <-Bus}
	}
}

// Route represents different screens in the application
type Route int

const (
	RoutePairs Route = iota
	RouteDashboard
	RouteSettings
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RoutePairs:
		return "pairs"
	case RouteDashboard:
		return "dashboard"
	case RouteSettings:
		return "settings"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}

package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/pairdash/internal/dashboard"
	"github.com/rovshanmuradov/pairdash/internal/model"
	"github.com/rovshanmuradov/pairdash/internal/ui"
	"github.com/rovshanmuradov/pairdash/internal/ui/component"
	"github.com/rovshanmuradov/pairdash/internal/ui/router"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

// PairsScreen lists the trading pairs and opens the dashboard for one
type PairsScreen struct {
	services ui.ServiceProvider
	width    int
	height   int
	keyMap   ui.KeyMap

	helpBar *component.HelpBar
	table   *component.Table

	pairs      []model.TradingPair
	selectedID int
	loading    bool
	autoOpen   int
	status     statusLine
}

// NewPairsScreen creates the pair selector. A non-zero autoOpen pair id is
// opened as soon as the list has loaded.
func NewPairsScreen(services ui.ServiceProvider, autoOpen int) *PairsScreen {
	keyMap := ui.DefaultKeyMap()

	return &PairsScreen{
		services: services,
		keyMap:   keyMap,
		autoOpen: autoOpen,
		helpBar: component.NewHelpBar().
			SetKeyBindings(keyMap.ContextualHelp(ui.RoutePairs)),
		table: component.NewTable().
			SetColumns([]component.TableColumn{
				{Header: "ID", Width: 6, Align: lipgloss.Right},
				{Header: "Pair", Align: lipgloss.Left},
				{Header: "Status", Width: 10, Align: lipgloss.Left},
				{Header: "Settings", Width: 12, Align: lipgloss.Left},
			}).
			SetEmptyText("no trading pairs"),
	}
}

// Init stops any dashboard poller and reloads the pair list
func (s *PairsScreen) Init() tea.Cmd {
	s.services.StopWatching()
	return s.loadPairs()
}

func (s *PairsScreen) loadPairs() tea.Cmd {
	s.loading = true
	controller := s.services.GetDashboard()
	ctx := s.services.GetContext()
	return func() tea.Msg {
		view, err := controller.LoadPairs(ctx)
		return ui.PairsLoadedMsg{View: view, Err: err}
	}
}

// Update handles screen updates
func (s *PairsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if s.status.apply(msg) {
		return s, nil
	}

	switch msg := msg.(type) {
	case ui.PairsLoadedMsg:
		s.loading = false
		if msg.Err != nil {
			s.status.setError("Loading pairs failed", msg.Err)
			return s, nil
		}
		s.setPairs(msg.View)
		if s.autoOpen != 0 {
			id := s.autoOpen
			s.autoOpen = 0
			return s, s.open(id)
		}

	case ui.SelectedMsg:
		if msg.Err != nil {
			s.status.setError("Selecting pair failed", msg.Err)
			return s, nil
		}
		s.selectedID = msg.View.Selected.ID
		return s, func() tea.Msg { return ui.RouterMsg{To: ui.RouteDashboard} }

	case ui.ActiveToggledMsg:
		if msg.Err != nil {
			s.status.setError("Toggling pair failed", msg.Err)
			return s, nil
		}
		s.status.apply(ui.SuccessMsg{Message: fmt.Sprintf("pair is now %s", activeText(msg.Active))})
		s.setPairs(s.services.GetDashboard().Snapshot())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()
		case key.Matches(msg, s.keyMap.Enter):
			if pair, ok := s.highlighted(); ok {
				return s, s.open(pair.ID)
			}
		case key.Matches(msg, s.keyMap.ToggleActive):
			if pair, ok := s.highlighted(); ok {
				return s, s.toggle(pair.ID)
			}
		case key.Matches(msg, s.keyMap.Refresh):
			s.status.clear()
			return s, s.loadPairs()
		case key.Matches(msg, s.keyMap.Logs):
			return s, func() tea.Msg { return ui.RouterMsg{To: ui.RouteLogs} }
		}
	}

	return s, nil
}

// open selects the pair; the resulting SelectedMsg navigates on
func (s *PairsScreen) open(pairID int) tea.Cmd {
	controller := s.services.GetDashboard()
	return func() tea.Msg {
		view, err := controller.Select(pairID)
		return ui.SelectedMsg{View: view, Err: err}
	}
}

// toggle flips is_active of a pair, selecting it first when needed
func (s *PairsScreen) toggle(pairID int) tea.Cmd {
	controller := s.services.GetDashboard()
	ctx := s.services.GetContext()
	return func() tea.Msg {
		if vm := controller.Snapshot(); !vm.HasSelection || vm.Selected.ID != pairID {
			if _, err := controller.Select(pairID); err != nil {
				return ui.ActiveToggledMsg{Err: err}
			}
		}
		active, err := controller.ToggleActive(ctx)
		return ui.ActiveToggledMsg{Active: active, Err: err}
	}
}

func (s *PairsScreen) setPairs(view dashboard.ViewModel) {
	s.pairs = view.Pairs
	if view.HasSelection {
		s.selectedID = view.Selected.ID
	}
	if len(s.pairs) == 0 && view.Warning != "" {
		s.status.setWarning(view.Warning)
	}

	rows := make([]component.TableRow, len(s.pairs))
	for i, pair := range s.pairs {
		status := style.MutedStyle
		if pair.IsActive {
			status = style.SuccessStyle
		}
		setting := "none"
		if pair.TradingSetting != nil {
			setting = fmt.Sprintf("#%d", pair.TradingSetting.ID)
		}
		rows[i] = component.TableRow{
			Data:       []string{fmt.Sprint(pair.ID), pair.Label(), activeText(pair.IsActive), setting},
			CellStyles: []*lipgloss.Style{nil, nil, &status, nil},
		}
	}
	s.table.SetRows(rows)
	for i, pair := range s.pairs {
		if pair.ID == s.selectedID {
			s.table.SetSelectedRow(i)
		}
	}
}

func (s *PairsScreen) highlighted() (model.TradingPair, bool) {
	i := s.table.GetSelectedRow()
	if i < 0 || i >= len(s.pairs) {
		return model.TradingPair{}, false
	}
	return s.pairs[i], true
}

// View renders the pair list
func (s *PairsScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(style.TitleStyle.Render("Trading pairs"))
	content.WriteString("\n")

	if s.loading && len(s.pairs) == 0 {
		content.WriteString(style.MutedStyle.Render("loading pairs…"))
	} else {
		content.WriteString(style.PanelStyle.Render(s.table.View()))
	}
	content.WriteString("\n")

	if status := s.status.View(); status != "" {
		content.WriteString(status)
		content.WriteString("\n")
	}
	content.WriteString(s.helpBar.View())

	return content.String()
}

// SetSize sets the screen dimensions
func (s *PairsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	s.table.SetSize(width-4, height-8)
}

func activeText(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

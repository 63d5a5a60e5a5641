package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/dashboard"
	"github.com/rovshanmuradov/pairdash/internal/export"
	"github.com/rovshanmuradov/pairdash/internal/indicator"
	"github.com/rovshanmuradov/pairdash/internal/reconcile"
	"github.com/rovshanmuradov/pairdash/internal/settings"
	"github.com/rovshanmuradov/pairdash/internal/ui"
	"github.com/rovshanmuradov/pairdash/internal/ui/component"
	"github.com/rovshanmuradov/pairdash/internal/ui/router"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

const (
	chartHeight   = 10
	logPaneHeight = 6
)

// soldMsg carries the outcome of a sell request
type soldMsg struct {
	orderID int
	result  *api.SellResult
	err     error
}

// DashboardScreen shows price, orders and settings of the selected pair
type DashboardScreen struct {
	services ui.ServiceProvider
	logger   *zap.Logger
	width    int
	height   int
	keyMap   ui.KeyMap

	// UI Components
	header  *component.PriceHeader
	chart   *component.PriceChart
	orders  *component.Table
	logs    *component.CompactLogViewer
	helpBar *component.HelpBar

	view         dashboard.ViewModel
	generation   uint64
	fetching     bool
	showSettings bool
	status       statusLine
}

// NewDashboardScreen creates the dashboard for the current selection
func NewDashboardScreen(services ui.ServiceProvider) *DashboardScreen {
	keyMap := ui.DefaultKeyMap()
	view := services.GetDashboard().Snapshot()

	s := &DashboardScreen{
		services:   services,
		logger:     services.GetLogger().Named("dashboard_screen"),
		keyMap:     keyMap,
		header:     component.NewPriceHeader(),
		chart:      component.NewPriceChart(60, chartHeight),
		logs:       component.NewCompactLogViewer(services.GetLogBuffer(), 50).SetTitle("Logs"),
		generation: view.Generation,
		fetching:   true,
		helpBar: component.NewHelpBar().
			SetKeyBindings(keyMap.ContextualHelp(ui.RouteDashboard)).
			SetCompact(true),
		orders: component.NewTable().
			SetColumns([]component.TableColumn{
				{Header: "Order", Width: 7, Align: lipgloss.Right},
				{Header: "Created", Width: 12, Align: lipgloss.Left},
				{Header: "Amount", Width: 12, Align: lipgloss.Right},
				{Header: "Buy", Width: 12, Align: lipgloss.Right},
				{Header: "Sell", Width: 12, Align: lipgloss.Right},
				{Header: "Profit", Width: 12, Align: lipgloss.Right},
				{Header: "Status", Align: lipgloss.Left},
			}).
			SetEmptyText("no orders"),
	}
	s.apply(view)
	return s
}

// Init keeps a poller running for this screen's selection
func (s *DashboardScreen) Init() tea.Cmd {
	if view := s.services.GetDashboard().Snapshot(); view.Generation == s.generation {
		// settings or activity may have changed while another screen was on top
		s.apply(view)
	}
	s.services.Watch(s.generation)
	return nil
}

// Update handles screen updates
func (s *DashboardScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if s.status.apply(msg) {
		return s, nil
	}

	switch msg := msg.(type) {
	case ui.RefreshedMsg:
		return s, s.handleRefresh(msg)

	case soldMsg:
		if msg.err != nil {
			s.status.setError(fmt.Sprintf("Sell of order %d failed", msg.orderID), msg.err)
			return s, nil
		}
		s.status.apply(ui.SuccessMsg{
			Message: fmt.Sprintf("order %d sold at %s", msg.orderID, component.FormatPrice(msg.result.Price)),
		})
		s.restart()

	case ui.ActiveToggledMsg:
		if msg.Err != nil {
			s.status.setError("Toggling pair failed", msg.Err)
			return s, nil
		}
		s.apply(s.services.GetDashboard().Snapshot())
		s.status.apply(ui.SuccessMsg{Message: fmt.Sprintf("pair is now %s", activeText(msg.Active))})

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	return s, nil
}

func (s *DashboardScreen) handleRefresh(msg ui.RefreshedMsg) tea.Cmd {
	if msg.Generation() != s.generation || errors.Is(msg.Result.Err, dashboard.ErrStale) {
		s.logger.Debug("Dropping result of another selection",
			zap.Uint64("result_generation", msg.Generation()),
			zap.Uint64("generation", s.generation))
		return nil
	}

	s.fetching = false
	s.apply(msg.Result.View)
	if err := msg.Result.Err; err != nil && !errors.Is(err, context.Canceled) {
		s.status.setError("Refresh failed", err)
	}
	return nil
}

func (s *DashboardScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keyMap.Quit):
		return tea.Quit
	case key.Matches(msg, s.keyMap.Up):
		s.orders.MoveUp()
	case key.Matches(msg, s.keyMap.Down):
		s.orders.MoveDown()
	case key.Matches(msg, s.keyMap.Sell):
		return s.sellSelected()
	case key.Matches(msg, s.keyMap.Refresh):
		s.status.clear()
		s.restart()
	case key.Matches(msg, s.keyMap.LoadMore):
		limit := s.services.GetDashboard().LoadMore()
		s.status.apply(ui.SuccessMsg{Message: fmt.Sprintf("loading %d orders", limit)})
		s.restart()
	case key.Matches(msg, s.keyMap.Settings):
		s.showSettings = !s.showSettings
		s.layout()
	case key.Matches(msg, s.keyMap.EditSettings):
		if s.view.Settings.Empty() {
			s.status.setWarning("this pair has no trading settings")
			return nil
		}
		return func() tea.Msg { return ui.RouterMsg{To: ui.RouteSettings} }
	case key.Matches(msg, s.keyMap.ToggleActive):
		return s.toggle()
	case key.Matches(msg, s.keyMap.Export):
		return s.export()
	case key.Matches(msg, s.keyMap.Logs):
		return func() tea.Msg { return ui.RouterMsg{To: ui.RouteLogs} }
	}
	return nil
}

// restart replaces the poller so a refresh runs right away
func (s *DashboardScreen) restart() {
	s.fetching = true
	s.header.SetFetching(true)
	s.services.Restart()
}

func (s *DashboardScreen) sellSelected() tea.Cmd {
	row, ok := s.selectedRow()
	if !ok {
		return nil
	}
	if row.Closed {
		s.status.setWarning(fmt.Sprintf("order %d is already closed", row.OrderID))
		return nil
	}

	controller := s.services.GetDashboard()
	ctx := s.services.GetContext()
	orderID := row.OrderID
	return func() tea.Msg {
		result, err := controller.Sell(ctx, orderID)
		return soldMsg{orderID: orderID, result: result, err: err}
	}
}

func (s *DashboardScreen) toggle() tea.Cmd {
	controller := s.services.GetDashboard()
	ctx := s.services.GetContext()
	return func() tea.Msg {
		active, err := controller.ToggleActive(ctx)
		return ui.ActiveToggledMsg{Active: active, Err: err}
	}
}

func (s *DashboardScreen) export() tea.Cmd {
	exporter := s.services.GetExporter()
	dataset := s.view.Dataset
	options := export.Options{
		Format:    export.FormatCSV,
		OutputDir: s.services.GetConfig().ExportDir,
		PairLabel: s.view.Label(),
	}
	return func() tea.Msg {
		path, err := exporter.Export(dataset, options)
		if err != nil {
			return errorMsg("Export failed", err)
		}
		return successMsg("Export", "exported to "+path)
	}
}

func (s *DashboardScreen) selectedRow() (reconcile.Row, bool) {
	i := s.orders.GetSelectedRow()
	if i < 0 || i >= len(s.view.Dataset.Rows) {
		return reconcile.Row{}, false
	}
	return s.view.Dataset.Rows[i], true
}

// apply copies a view model into the components
func (s *DashboardScreen) apply(view dashboard.ViewModel) {
	s.view = view
	dataset := view.Dataset

	s.header.
		SetPair(view.Label(), view.Selected.IsActive).
		SetChange(view.Change).
		SetTotalProfit(dataset.TotalProfit).
		SetUpdated(view.LastRefresh).
		SetFetching(s.fetching)
	s.chart.SetDataset(dataset)

	rows := make([]component.TableRow, len(dataset.Rows))
	for i, row := range dataset.Rows {
		rows[i] = orderRow(row)
	}
	s.orders.SetRows(rows)
	s.orders.SetFooter([]string{"", "", "", "", "Total", component.FormatSigned(dataset.TotalProfit), ""})

	if view.Warning != "" {
		s.status.setWarning(view.Warning)
	} else if s.status.warning {
		s.status.clear()
	}
}

func orderRow(row reconcile.Row) component.TableRow {
	sell, profit := "—", "—"
	profitStyle := style.MutedStyle
	if row.Closed {
		sell = component.FormatPrice(row.SellPrice)
	}
	if row.Priced {
		profit = component.FormatSigned(row.Profit)
		profitStyle = style.SignedStyle(row.Profit)
	}

	status, statusStyle := "open", style.BuyStyle
	if row.Closed {
		status, statusStyle = "closed", style.MutedStyle
	}
	if !row.OnChart {
		status += " *"
	}

	return component.TableRow{
		Data: []string{
			fmt.Sprint(row.OrderID),
			row.Created.Local().Format("01-02 15:04"),
			component.FormatPrice(row.Amount),
			component.FormatPrice(row.BuyPrice),
			sell,
			profit,
			status,
		},
		CellStyles: []*lipgloss.Style{nil, nil, nil, nil, nil, &profitStyle, &statusStyle},
	}
}

// View renders the dashboard
func (s *DashboardScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	sections := []string{
		s.header.View(),
		style.PanelStyle.Render(s.chart.View()),
		indicatorLine(s.view.Indicators),
		style.PanelStyle.Render(s.orders.View()),
	}
	if s.showSettings {
		sections = append(sections, style.PanelStyle.Render(settingsPanel(s.view.Settings, s.width)))
	}
	sections = append(sections, s.logs.View())
	if status := s.status.View(); status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, s.helpBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func indicatorLine(snapshot indicator.Snapshot) string {
	if !snapshot.Ready {
		return style.MutedStyle.Render("indicators: not enough data")
	}

	signal := style.HoldStyle
	switch snapshot.Signal {
	case indicator.SignalBuy:
		signal = style.BuyStyle
	case indicator.SignalSell:
		signal = style.SellStyle
	}

	return fmt.Sprintf("EMA %s / %s   RSI %.1f   signal %s",
		component.FormatPrice(snapshot.ShortEMA),
		component.FormatPrice(snapshot.LongEMA),
		snapshot.RSI,
		signal.Render(strings.ToUpper(string(snapshot.Signal))))
}

func settingsPanel(form settings.Form, width int) string {
	if form.Empty() {
		return style.MutedStyle.Render("no trading settings")
	}

	const columns = 2
	perColumn := (len(form.Fields) + columns - 1) / columns
	blockStyle := lipgloss.NewStyle().Width(style.AdaptiveWidth(width, 45))

	blocks := make([]string, 0, columns)
	for c := 0; c < columns; c++ {
		var b strings.Builder
		start, end := c*perColumn, (c+1)*perColumn
		if start >= len(form.Fields) {
			break
		}
		if end > len(form.Fields) {
			end = len(form.Fields)
		}
		for _, field := range form.Fields[start:end] {
			fmt.Fprintf(&b, "%-22s %s\n", field.Label, field.Value)
		}
		blocks = append(blocks, blockStyle.Render(strings.TrimRight(b.String(), "\n")))
	}

	title := style.SubHeaderStyle.Render(fmt.Sprintf("Settings #%d", form.SettingID))
	return lipgloss.JoinVertical(lipgloss.Left, title, style.AdaptiveJoinHorizontal(width, blocks...))
}

// SetSize sets the screen dimensions
func (s *DashboardScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.layout()
}

func (s *DashboardScreen) layout() {
	s.header.SetWidth(s.width)
	s.helpBar.SetWidth(s.width)
	// price labels and panel borders take the rest
	s.chart.SetSize(s.width-20, chartHeight)
	s.logs.SetSize(s.width-4, logPaneHeight)

	used := s.header.GetHeight() + chartHeight + 4 + 1 + logPaneHeight + 2 + 4
	if s.showSettings {
		used += 10
	}
	s.orders.SetSize(s.width-4, s.height-used)
}

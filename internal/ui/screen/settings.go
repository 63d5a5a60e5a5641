package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/multierr"

	"github.com/rovshanmuradov/pairdash/internal/ui"
	"github.com/rovshanmuradov/pairdash/internal/ui/component"
	"github.com/rovshanmuradov/pairdash/internal/ui/router"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

// settingsSavedMsg carries the result of a settings PATCH
type settingsSavedMsg struct {
	err error
}

// SettingsScreen edits the trading setting of the selected pair
type SettingsScreen struct {
	services ui.ServiceProvider
	width    int
	height   int
	keyMap   ui.KeyMap

	form    *component.Form
	helpBar *component.HelpBar
	label   string
	saving  bool
	status  statusLine
}

// NewSettingsScreen creates the form pre-filled from the selected pair
func NewSettingsScreen(services ui.ServiceProvider) *SettingsScreen {
	keyMap := ui.DefaultKeyMap()
	view := services.GetDashboard().Snapshot()

	return &SettingsScreen{
		services: services,
		keyMap:   keyMap,
		form:     component.NewSettingsForm(view.Settings),
		label:    view.Label(),
		helpBar: component.NewHelpBar().
			SetKeyBindings(keyMap.ContextualHelp(ui.RouteSettings)),
	}
}

// Init initializes the screen
func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

// Update handles screen updates
func (s *SettingsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if s.status.apply(msg) {
		return s, nil
	}

	switch msg := msg.(type) {
	case settingsSavedMsg:
		s.saving = false
		if msg.err != nil {
			s.status.setError("Saving settings failed", msg.err)
			return s, nil
		}
		// back first, so the confirmation lands on the dashboard
		return s, tea.Sequence(
			func() tea.Msg { return ui.BackMsg{} },
			func() tea.Msg { return successMsg("Settings", "settings saved") },
		)

	case tea.KeyMsg:
		if key.Matches(msg, s.keyMap.Save) {
			return s, s.save()
		}
		if msg.String() == "ctrl+c" {
			return s, tea.Quit
		}
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

// save validates locally and submits the form when it is valid
func (s *SettingsScreen) save() tea.Cmd {
	if s.saving {
		return nil
	}
	values := s.form.Settings()
	if _, err := values.Request(); err != nil {
		s.form.SetErrors(multierr.Errors(err))
		s.status.setError("Settings not saved", err)
		return nil
	}
	s.form.SetErrors(nil)
	s.status.clear()
	s.saving = true

	controller := s.services.GetDashboard()
	ctx := s.services.GetContext()
	return func() tea.Msg {
		return settingsSavedMsg{err: controller.SaveSettings(ctx, values)}
	}
}

// View renders the settings form
func (s *SettingsScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	title := "Trading settings"
	if s.label != "" {
		title += " · " + s.label
	}
	content.WriteString(style.TitleStyle.Render(title))
	content.WriteString("\n")

	if s.form.FieldCount() == 0 {
		content.WriteString(style.MutedStyle.Render("this pair has no trading settings"))
	} else {
		content.WriteString(style.PanelStyle.Render(s.form.View()))
	}
	content.WriteString("\n")

	if s.saving {
		content.WriteString(style.MutedStyle.Render("saving…"))
		content.WriteString("\n")
	} else if status := s.status.View(); status != "" {
		content.WriteString(status)
		content.WriteString("\n")
	}
	content.WriteString(s.helpBar.View())

	return content.String()
}

// SetSize sets the screen dimensions
func (s *SettingsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.form.SetWidth(width - 4)
	s.helpBar.SetWidth(width)
}

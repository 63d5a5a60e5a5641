package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/pairdash/internal/logger"
	"github.com/rovshanmuradov/pairdash/internal/ui"
	"github.com/rovshanmuradov/pairdash/internal/ui/component"
	"github.com/rovshanmuradov/pairdash/internal/ui/router"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

const logsRefreshInterval = time.Second

// logsTickMsg re-reads the log buffer
type logsTickMsg struct {
	id int
}

// LogsScreen shows the in-memory log buffer full screen
type LogsScreen struct {
	buffer  *logger.LogBuffer
	width   int
	height  int
	keyMap  ui.KeyMap
	viewer  *component.CompactLogViewer
	helpBar *component.HelpBar
	tickID  int
}

// NewLogsScreen creates a new logs screen
func NewLogsScreen(services ui.ServiceProvider) *LogsScreen {
	keyMap := ui.DefaultKeyMap()
	buffer := services.GetLogBuffer()

	return &LogsScreen{
		buffer: buffer,
		keyMap: keyMap,
		viewer: component.NewCompactLogViewer(buffer, 1000).
			SetTitle("Logs").
			SetBorder(false),
		helpBar: component.NewHelpBar().
			SetKeyBindings(keyMap.ContextualHelp(ui.RouteLogs)),
	}
}

// Init starts the refresh ticker. A new id invalidates ticks of a previous
// Init, so re-initialising never doubles the tick rate.
func (s *LogsScreen) Init() tea.Cmd {
	s.tickID++
	return s.tick()
}

func (s *LogsScreen) tick() tea.Cmd {
	id := s.tickID
	return tea.Tick(logsRefreshInterval, func(time.Time) tea.Msg {
		return logsTickMsg{id: id}
	})
}

// Update handles screen updates
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case logsTickMsg:
		if msg.id != s.tickID {
			return s, nil
		}
		s.viewer.SetSize(s.width, s.viewerHeight())
		return s, s.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.FilterInfo):
			s.viewer.ToggleLogLevel("info")
			return s, nil
		case key.Matches(msg, s.keyMap.FilterWarn):
			s.viewer.ToggleLogLevel("warning")
			return s, nil
		case key.Matches(msg, s.keyMap.FilterError):
			s.viewer.ToggleLogLevel("error")
			return s, nil
		case key.Matches(msg, s.keyMap.ClearLogs):
			s.buffer.Clear()
			s.viewer.SetSize(s.width, s.viewerHeight())
			return s, nil
		}
	}

	return s, s.viewer.Update(msg)
}

// View renders the logs screen
func (s *LogsScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	total, dropped := s.buffer.GetStats()

	var content strings.Builder
	content.WriteString(style.TitleStyle.Render("Logs"))
	content.WriteString("\n")
	content.WriteString(style.MutedStyle.Render(fmt.Sprintf("showing %s · %d written · %d dropped",
		s.viewer.GetFilterStatus(), total, dropped)))
	content.WriteString("\n")
	content.WriteString(s.viewer.View())
	content.WriteString("\n")
	content.WriteString(s.helpBar.View())

	return content.String()
}

func (s *LogsScreen) viewerHeight() int {
	h := s.height - 6
	if h < 3 {
		h = 3
	}
	return h
}

// SetSize sets the screen dimensions
func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewer.SetSize(width, s.viewerHeight())
	s.helpBar.SetWidth(width)
}

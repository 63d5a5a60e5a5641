package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/pairdash/internal/logger"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

// LogFilter defines what log levels to show
type LogFilter struct {
	ShowError   bool
	ShowWarning bool
	ShowInfo    bool
	ShowDebug   bool
}

// DefaultLogFilter hides debug entries
func DefaultLogFilter() LogFilter {
	return LogFilter{ShowError: true, ShowWarning: true, ShowInfo: true}
}

// CompactLogViewer renders the tail of the in-memory log buffer
type CompactLogViewer struct {
	buffer   *logger.LogBuffer
	viewport viewport.Model
	filter   LogFilter
	style    style.LogStyles
	limit    int
	width    int
	height   int
	visible  bool
	title    string
	border   bool
}

// NewCompactLogViewer creates a log pane showing at most limit entries
func NewCompactLogViewer(logBuffer *logger.LogBuffer, limit int) *CompactLogViewer {
	if limit <= 0 {
		limit = 50
	}
	return &CompactLogViewer{
		buffer:   logBuffer,
		visible:  true,
		title:    "Recent Logs",
		limit:    limit,
		border:   true,
		filter:   DefaultLogFilter(),
		style:    style.NewLogStyles(style.DefaultPalette()),
		viewport: viewport.New(50, 4),
	}
}

// SetTitle sets the pane caption
func (clv *CompactLogViewer) SetTitle(title string) *CompactLogViewer {
	clv.title = title
	return clv
}

// SetBorder enables/disables the rounded border
func (clv *CompactLogViewer) SetBorder(border bool) *CompactLogViewer {
	clv.border = border
	return clv
}

// SetSize sets the component dimensions
func (clv *CompactLogViewer) SetSize(width, height int) {
	clv.width = width
	clv.height = height

	frame := 1 // title
	hframe := 0
	if clv.border {
		frame += 2
		hframe = 4
	}

	viewportWidth := width - hframe
	viewportHeight := height - frame
	if viewportWidth < 10 {
		viewportWidth = 10
	}
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	clv.viewport.Width = viewportWidth
	clv.viewport.Height = viewportHeight
}

// SetVisible toggles the visibility of the log viewer
func (clv *CompactLogViewer) SetVisible(visible bool) {
	clv.visible = visible
}

// IsVisible returns whether the log viewer is visible
func (clv *CompactLogViewer) IsVisible() bool {
	return clv.visible
}

// Filter returns the current filter
func (clv *CompactLogViewer) Filter() LogFilter {
	return clv.filter
}

// ToggleLogLevel toggles a specific log level
func (clv *CompactLogViewer) ToggleLogLevel(level string) {
	switch level {
	case "error":
		clv.filter.ShowError = !clv.filter.ShowError
	case "warning":
		clv.filter.ShowWarning = !clv.filter.ShowWarning
	case "info":
		clv.filter.ShowInfo = !clv.filter.ShowInfo
	case "debug":
		clv.filter.ShowDebug = !clv.filter.ShowDebug
	}
	clv.updateViewport()
}

// Update handles viewport scrolling
func (clv *CompactLogViewer) Update(msg tea.Msg) tea.Cmd {
	if !clv.visible {
		return nil
	}

	var cmd tea.Cmd
	clv.viewport, cmd = clv.viewport.Update(msg)
	return cmd
}

// View renders the compact log viewer
func (clv *CompactLogViewer) View() string {
	if !clv.visible {
		return ""
	}

	clv.updateViewport()

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		clv.style.Title.Render(fmt.Sprintf("%s (%s)", clv.title, clv.GetFilterStatus())),
		clv.viewport.View(),
	)

	if !clv.border {
		return content
	}
	return clv.style.Container.Width(clv.width - 2).Render(content)
}

// Lines returns the formatted entries that pass the filter, oldest first
func (clv *CompactLogViewer) Lines() []string {
	if clv.buffer == nil {
		return nil
	}

	entries := clv.buffer.GetRecentLogs(clv.limit)
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if clv.shouldShowEntry(entry) {
			lines = append(lines, clv.formatLogEntry(entry))
		}
	}
	return lines
}

func (clv *CompactLogViewer) updateViewport() {
	if clv.buffer == nil {
		clv.viewport.SetContent("No log buffer available")
		return
	}

	lines := clv.Lines()
	if len(lines) == 0 {
		clv.viewport.SetContent("No logs match current filter")
		return
	}

	atBottom := clv.viewport.AtBottom()
	clv.viewport.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		clv.viewport.GotoBottom()
	}
}

func (clv *CompactLogViewer) shouldShowEntry(entry logger.LogEntry) bool {
	switch strings.ToLower(entry.Level) {
	case "error", "dpanic", "panic", "fatal":
		return clv.filter.ShowError
	case "warning", "warn":
		return clv.filter.ShowWarning
	case "debug":
		return clv.filter.ShowDebug
	default:
		return clv.filter.ShowInfo
	}
}

func (clv *CompactLogViewer) formatLogEntry(entry logger.LogEntry) string {
	timestamp := clv.style.Timestamp.Render(entry.Timestamp.Local().Format("15:04:05"))

	message := entry.Message
	if entry.Logger != "" {
		message = entry.Logger + ": " + message
	}
	if e, ok := entry.Fields["error"]; ok {
		message = fmt.Sprintf("%s (%v)", message, e)
	}

	var styledMessage string
	switch strings.ToLower(entry.Level) {
	case "error", "dpanic", "panic", "fatal":
		styledMessage = clv.style.Error.Render(message)
	case "warning", "warn":
		styledMessage = clv.style.Warning.Render(message)
	case "info":
		styledMessage = clv.style.Info.Render(message)
	case "debug":
		styledMessage = clv.style.Debug.Render(message)
	default:
		styledMessage = clv.style.Entry.Render(message)
	}

	return fmt.Sprintf("%s %s", timestamp, styledMessage)
}

// GetHeight returns the component height for layout calculations
func (clv *CompactLogViewer) GetHeight() int {
	if !clv.visible {
		return 0
	}
	return clv.height
}

// GetFilterStatus returns current filter status as string
func (clv *CompactLogViewer) GetFilterStatus() string {
	var active []string
	if clv.filter.ShowError {
		active = append(active, "error")
	}
	if clv.filter.ShowWarning {
		active = append(active, "warn")
	}
	if clv.filter.ShowInfo {
		active = append(active, "info")
	}
	if clv.filter.ShowDebug {
		active = append(active, "debug")
	}

	if len(active) == 0 {
		return "nothing shown"
	}
	return strings.Join(active, ", ")
}

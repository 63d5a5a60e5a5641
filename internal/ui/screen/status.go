package screen

import (
	"errors"
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/dashboard"
	"github.com/rovshanmuradov/pairdash/internal/ui"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

// statusLine is the one-line feedback shown under every screen
type statusLine struct {
	text    string
	isError bool
	warning bool
}

func (s *statusLine) apply(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case ui.ErrorMsg:
		s.setError(msg.Title, msg.Error)
	case ui.SuccessMsg:
		s.text = msg.Message
		s.isError, s.warning = false, false
	default:
		return false
	}
	return true
}

func (s *statusLine) setError(title string, err error) {
	s.text = fmt.Sprintf("%s: %s", title, describe(err))
	s.isError, s.warning = true, false
}

func (s *statusLine) setWarning(text string) {
	s.text = text
	s.isError, s.warning = false, true
}

func (s *statusLine) clear() {
	*s = statusLine{}
}

func (s statusLine) View() string {
	switch {
	case s.text == "":
		return ""
	case s.isError:
		return style.ErrorStyle.Render("✗ " + s.text)
	case s.warning:
		return style.WarningStyle.Render("! " + s.text)
	default:
		return style.SuccessStyle.Render("✓ " + s.text)
	}
}

// describe turns controller and API errors into short user text
func describe(err error) string {
	var statusErr *api.StatusError
	switch {
	case err == nil:
		return "ok"
	case api.IsStatus(err, http.StatusNotFound):
		return "not found on the server"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("server answered %d", statusErr.StatusCode)
	case errors.Is(err, dashboard.ErrNoSelection):
		return "select a pair first"
	default:
		return err.Error()
	}
}

func errorMsg(title string, err error) tea.Msg {
	return ui.ErrorMsg{Error: err, Title: title}
}

func successMsg(title, message string) tea.Msg {
	return ui.SuccessMsg{Title: title, Message: message}
}

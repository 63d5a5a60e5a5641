package screen

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/pairdash/internal/model"
	"github.com/rovshanmuradov/pairdash/internal/ui"
)

// loadedPairsScreen runs Init against a mock returning pairs and applies
// the loaded message; the follow-up command is returned.
func loadedPairsScreen(t *testing.T, autoOpen int, pairs []model.TradingPair, err error) (*PairsScreen, *fakeServices, *MockAPI, tea.Cmd) {
	t.Helper()
	m := new(MockAPI)
	services := newFakeServices(t, m)
	m.On("Pairs", mock.Anything).Return(pairs, err).Once()

	s := NewPairsScreen(services, autoOpen)
	s.SetSize(100, 30)
	msg := run(s.Init())
	require.IsType(t, ui.PairsLoadedMsg{}, msg)
	assert.Equal(t, 1, services.stops)

	_, cmd := s.Update(msg)
	return s, services, m, cmd
}

func TestPairsScreenLoadsAndOpens(t *testing.T) {
	s, services, _, cmd := loadedPairsScreen(t, 0, testPairs(), nil)
	assert.Nil(t, cmd)
	assert.Equal(t, 2, s.table.GetRowCount())
	assert.Contains(t, s.View(), "USDC / BONK")

	s.Update(keyPress("down"))
	_, cmd = s.Update(keyPress("enter"))
	selected, ok := run(cmd).(ui.SelectedMsg)
	require.True(t, ok)
	require.NoError(t, selected.Err)
	assert.Equal(t, 2, selected.View.Selected.ID)
	assert.Equal(t, 2, services.controller.Snapshot().Selected.ID)

	_, cmd = s.Update(selected)
	assert.Equal(t, ui.RouterMsg{To: ui.RouteDashboard}, run(cmd))
}

func TestPairsScreenAutoOpen(t *testing.T) {
	s, _, _, cmd := loadedPairsScreen(t, 2, testPairs(), nil)

	selected, ok := run(cmd).(ui.SelectedMsg)
	require.True(t, ok)
	assert.Equal(t, 2, selected.View.Selected.ID)
	assert.Zero(t, s.autoOpen)
}

func TestPairsScreenLoadError(t *testing.T) {
	s, _, _, cmd := loadedPairsScreen(t, 1, []model.TradingPair(nil), errors.New("connection refused"))

	assert.Nil(t, cmd)
	assert.True(t, s.status.isError)
	assert.Contains(t, s.View(), "connection refused")
}

func TestPairsScreenEmptyList(t *testing.T) {
	s, _, _, _ := loadedPairsScreen(t, 0, []model.TradingPair{}, nil)

	assert.True(t, s.status.warning)
	assert.Contains(t, s.View(), "no trading pairs")
}

func TestPairsScreenToggleSelectsFirst(t *testing.T) {
	s, _, m, _ := loadedPairsScreen(t, 0, testPairs(), nil)

	updated := testPairs()
	updated[0].IsActive = false
	m.On("ToggleActive", mock.Anything, 1, false).Return(nil).Once()
	m.On("Pairs", mock.Anything).Return(updated, nil).Once()

	_, cmd := s.Update(keyPress("a"))
	toggled, ok := run(cmd).(ui.ActiveToggledMsg)
	require.True(t, ok)
	require.NoError(t, toggled.Err)
	assert.False(t, toggled.Active)

	s.Update(toggled)
	assert.Contains(t, s.status.text, "inactive")
	assert.False(t, s.pairs[0].IsActive)
	m.AssertExpectations(t)
}

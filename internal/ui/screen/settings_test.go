package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/pairdash/internal/api"
	"github.com/rovshanmuradov/pairdash/internal/settings"
)

func TestSettingsScreenRejectsInvalidInput(t *testing.T) {
	services, m := selectedServices(t)
	s := NewSettingsScreen(services)
	s.SetSize(100, 40)

	// take profit is focused first
	s.Update(keyPress("x"))
	_, cmd := s.Update(keyPress("ctrl+s"))

	assert.Nil(t, cmd)
	assert.NotEmpty(t, s.form.FieldError(settings.TakeProfit))
	assert.True(t, s.status.isError)
	m.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettingsScreenSaves(t *testing.T) {
	services, m := selectedServices(t)
	s := NewSettingsScreen(services)
	s.SetSize(100, 40)

	s.Update(keyPress("5"))
	m.On("UpdateSettings", mock.Anything, 11, mock.MatchedBy(func(req api.UpdateSettingsRequest) bool {
		return req.TakeProfitPercentage == 105 && req.BuyCheckPeriodMinutes == 60
	})).Return(nil).Once()
	m.On("Pairs", mock.Anything).Return(testPairs(), nil).Once()

	_, cmd := s.Update(keyPress("ctrl+s"))
	require.NotNil(t, cmd)
	assert.True(t, s.saving)

	// a second save while the first runs is ignored
	_, again := s.Update(keyPress("ctrl+s"))
	assert.Nil(t, again)

	saved, ok := run(cmd).(settingsSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	_, cmd = s.Update(saved)
	assert.NotNil(t, cmd)
	assert.False(t, s.saving)
	m.AssertExpectations(t)
}

func TestSettingsScreenWithoutSettings(t *testing.T) {
	services, _ := selectedServices(t)
	_, err := services.controller.Select(2)
	require.NoError(t, err)

	s := NewSettingsScreen(services)
	s.SetSize(100, 40)
	assert.Contains(t, s.View(), "no trading settings")
}

package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogsScreen(t *testing.T) {
	services := newFakeServices(t, new(MockAPI))
	services.logs.Add("info", "Pair selected", nil)
	services.logs.Add("error", "Sell failed", map[string]interface{}{"error": "boom"})

	s := NewLogsScreen(services)
	s.SetSize(120, 30)
	require.NotNil(t, s.Init())

	view := s.View()
	assert.Contains(t, view, "Pair selected")
	assert.Contains(t, view, "Sell failed (boom)")
	assert.Contains(t, view, "2 written")

	s.Update(keyPress("f3"))
	assert.False(t, s.viewer.Filter().ShowError)
	assert.NotContains(t, s.View(), "Sell failed")

	s.Update(keyPress("c"))
	assert.Empty(t, s.viewer.Lines())
}

func TestLogsScreenIgnoresOldTicks(t *testing.T) {
	s := NewLogsScreen(newFakeServices(t, new(MockAPI)))
	s.SetSize(80, 20)
	s.Init()
	s.Init()

	_, cmd := s.Update(logsTickMsg{id: 1})
	assert.Nil(t, cmd)
	_, cmd = s.Update(logsTickMsg{id: 2})
	assert.NotNil(t, cmd)
}

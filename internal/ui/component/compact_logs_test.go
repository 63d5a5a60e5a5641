package component

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rovshanmuradov/pairdash/internal/logger"
)

func TestCompactLogViewerFilters(t *testing.T) {
	buffer := logger.NewLogBuffer(10)
	buffer.Add("debug", "tick", nil)
	buffer.Add("info", "refresh ok", nil)
	buffer.Add("warn", "no price data", nil)
	buffer.Add("error", "sell failed", map[string]interface{}{"error": "status 404"})

	viewer := NewCompactLogViewer(buffer, 10)
	lines := viewer.Lines()
	assert.Len(t, lines, 3)
	assert.Contains(t, strings.Join(lines, "\n"), "sell failed (status 404)")

	viewer.ToggleLogLevel("debug")
	assert.Len(t, viewer.Lines(), 4)

	viewer.ToggleLogLevel("info")
	viewer.ToggleLogLevel("warning")
	lines = viewer.Lines()
	assert.Len(t, lines, 2)
	assert.Equal(t, "error, debug", viewer.GetFilterStatus())
}

func TestCompactLogViewerLimitAndVisibility(t *testing.T) {
	buffer := logger.NewLogBuffer(10)
	for i := 0; i < 5; i++ {
		buffer.Add("info", "entry", nil)
	}

	viewer := NewCompactLogViewer(buffer, 2)
	assert.Len(t, viewer.Lines(), 2)

	viewer.SetSize(60, 6)
	assert.Contains(t, viewer.View(), "Recent Logs")

	viewer.SetVisible(false)
	assert.False(t, viewer.IsVisible())
	assert.Empty(t, viewer.View())
	assert.Equal(t, 0, viewer.GetHeight())
}

func TestCompactLogViewerWithoutBuffer(t *testing.T) {
	viewer := NewCompactLogViewer(nil, 0)
	assert.Nil(t, viewer.Lines())
	assert.Contains(t, viewer.View(), "No log buffer available")
}

package component

import (
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func tableWithRows(n int) *Table {
	rows := make([]TableRow, n)
	for i := range rows {
		rows[i] = TableRow{Data: []string{strconv.Itoa(i + 1), "row" + strconv.Itoa(i+1)}}
	}
	return NewTable().
		SetColumns([]TableColumn{
			{Header: "ID", Width: 6, Align: lipgloss.Right},
			{Header: "Name", Width: 12, Align: lipgloss.Left},
		}).
		SetRows(rows)
}

func TestTableSelectionBounds(t *testing.T) {
	table := tableWithRows(3)

	table.MoveUp()
	assert.Equal(t, 0, table.GetSelectedRow())

	table.MoveDown().MoveDown().MoveDown()
	assert.Equal(t, 2, table.GetSelectedRow())

	// shrinking the rows keeps the selection in range
	table.SetRows(tableWithRows(1).rows)
	assert.Equal(t, 0, table.GetSelectedRow())

	table.SetRows(nil)
	assert.Equal(t, 0, table.GetSelectedRow())
	assert.Equal(t, 0, table.GetRowCount())
}

func TestTableViewFooterAndEmpty(t *testing.T) {
	table := tableWithRows(2).SetFooter([]string{"", "total 3"})
	view := table.View()
	assert.Contains(t, view, "row1")
	assert.Contains(t, view, "row2")
	assert.Contains(t, view, "total 3")

	empty := NewTable().
		SetColumns([]TableColumn{{Header: "ID", Width: 6}}).
		SetEmptyText("no orders")
	assert.Contains(t, empty.View(), "no orders")
}

func TestTableScrollsToSelection(t *testing.T) {
	table := tableWithRows(10).SetSize(40, 5) // header + separator + 3 rows

	for i := 0; i < 6; i++ {
		table.MoveDown()
	}
	view := table.View()
	assert.Contains(t, view, "row7")
	assert.NotContains(t, view, "row1 ")
	assert.Equal(t, 5, len(strings.Split(view, "\n")))
}

func TestTableAutoWidth(t *testing.T) {
	table := NewTable().
		SetColumns([]TableColumn{{Header: "A", Width: 10}, {Header: "B"}}).
		SetSize(41, 0)

	columns := table.columnWidths()
	assert.Equal(t, 10, columns[0].Width)
	assert.Equal(t, 30, columns[1].Width)
}

package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data
type TableRow struct {
	Data []string
	// CellStyles overrides the row style per column; nil entries keep it.
	CellStyles []*lipgloss.Style
}

// Table represents a data table component
type Table struct {
	columns     []TableColumn
	rows        []TableRow
	footer      []string
	width       int
	height      int
	selectedRow int
	offset      int

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	footerStyle      lipgloss.Style
	emptyStyle       lipgloss.Style

	selectable bool
	emptyText  string
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		footerStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			Padding(0, 1),

		emptyStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true).
			Padding(0, 1),

		selectable: true,
		emptyText:  "no rows",
	}
}

// SetColumns sets the table columns
func (t *Table) SetColumns(columns []TableColumn) *Table {
	t.columns = columns
	return t
}

// SetRows replaces all rows, keeping the selection in range
func (t *Table) SetRows(rows []TableRow) *Table {
	t.rows = rows
	if t.selectedRow >= len(rows) {
		t.selectedRow = len(rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	t.clampOffset()
	return t
}

// SetFooter sets a summary line rendered under a separator
func (t *Table) SetFooter(cells []string) *Table {
	t.footer = cells
	return t
}

// SetEmptyText sets the placeholder shown when there are no rows
func (t *Table) SetEmptyText(text string) *Table {
	t.emptyText = text
	return t
}

// SetSize sets the table dimensions. Height limits the visible rows.
func (t *Table) SetSize(width, height int) *Table {
	t.width = width
	t.height = height
	t.clampOffset()
	return t
}

// SetSelectable enables/disables row selection
func (t *Table) SetSelectable(selectable bool) *Table {
	t.selectable = selectable
	return t
}

// SetSelectedRow sets the currently selected row
func (t *Table) SetSelectedRow(index int) *Table {
	if index >= 0 && index < len(t.rows) {
		t.selectedRow = index
		t.clampOffset()
	}
	return t
}

// GetSelectedRow returns the currently selected row index
func (t *Table) GetSelectedRow() int {
	return t.selectedRow
}

// GetRowCount returns the number of rows
func (t *Table) GetRowCount() int {
	return len(t.rows)
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectable && t.selectedRow > 0 {
		t.selectedRow--
		t.clampOffset()
	}
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectable && t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
		t.clampOffset()
	}
	return t
}

// visibleRows is the number of data rows that fit; 0 means all
func (t *Table) visibleRows() int {
	if t.height <= 0 {
		return 0
	}
	// header, separator, footer separator and footer
	n := t.height - 2
	if len(t.footer) > 0 {
		n -= 2
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (t *Table) clampOffset() {
	visible := t.visibleRows()
	if visible == 0 {
		t.offset = 0
		return
	}
	if t.selectedRow < t.offset {
		t.offset = t.selectedRow
	}
	if t.selectedRow >= t.offset+visible {
		t.offset = t.selectedRow - visible + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	columns := t.columnWidths()
	var content strings.Builder

	for i, col := range columns {
		content.WriteString(t.renderCell(col.Header, col.Width, col.Align, t.headerStyle))
		if i < len(columns)-1 {
			content.WriteString("│")
		}
	}
	content.WriteString("\n")
	content.WriteString(t.separator(columns))

	if len(t.rows) == 0 {
		content.WriteString("\n")
		content.WriteString(t.emptyStyle.Render(t.emptyText))
	}

	end := len(t.rows)
	if visible := t.visibleRows(); visible > 0 && t.offset+visible < end {
		end = t.offset + visible
	}
	for rowIndex := t.offset; rowIndex < end; rowIndex++ {
		row := t.rows[rowIndex]
		selected := t.selectable && rowIndex == t.selectedRow
		content.WriteString("\n")
		for i, col := range columns {
			cellStyle := t.rowStyle
			if selected {
				cellStyle = t.selectedRowStyle
			} else if i < len(row.CellStyles) && row.CellStyles[i] != nil {
				cellStyle = row.CellStyles[i].Padding(0, 1)
			}

			cellData := ""
			if i < len(row.Data) {
				cellData = row.Data[i]
			}
			content.WriteString(t.renderCell(cellData, col.Width, col.Align, cellStyle))
			if i < len(columns)-1 {
				content.WriteString("│")
			}
		}
	}

	if len(t.footer) > 0 {
		content.WriteString("\n")
		content.WriteString(t.separator(columns))
		content.WriteString("\n")
		for i, col := range columns {
			cell := ""
			if i < len(t.footer) {
				cell = t.footer[i]
			}
			content.WriteString(t.renderCell(cell, col.Width, col.Align, t.footerStyle))
			if i < len(columns)-1 {
				content.WriteString(" ")
			}
		}
	}

	return content.String()
}

func (t *Table) separator(columns []TableColumn) string {
	var sep strings.Builder
	for i, col := range columns {
		sep.WriteString(strings.Repeat("─", col.Width))
		if i < len(columns)-1 {
			sep.WriteString("┼")
		}
	}
	return sep.String()
}

// renderCell renders a single table cell of the given outer width
func (t *Table) renderCell(content string, width int, align lipgloss.Position, cellStyle lipgloss.Style) string {
	content = truncate(content, width-2)
	return cellStyle.Width(width).Align(align).Render(content)
}

// columnWidths fills zero widths from the space the fixed columns leave
func (t *Table) columnWidths() []TableColumn {
	columns := append([]TableColumn(nil), t.columns...)
	if t.width <= 0 {
		for i := range columns {
			if columns[i].Width <= 0 {
				columns[i].Width = lipgloss.Width(columns[i].Header) + 2
			}
		}
		return columns
	}

	fixed, auto := 0, 0
	for _, col := range columns {
		if col.Width > 0 {
			fixed += col.Width
		} else {
			auto++
		}
	}

	available := t.width - fixed - (len(columns) - 1)
	for i := range columns {
		if columns[i].Width > 0 {
			continue
		}
		w := lipgloss.Width(columns[i].Header) + 2
		if auto > 0 && available/auto > w {
			w = available / auto
		}
		columns[i].Width = w
	}
	return columns
}

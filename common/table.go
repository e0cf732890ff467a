package common

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Cell is one table cell. Style is applied after padding so escape sequences
// never count towards the column width.
type Cell struct {
	Text  string
	Style string
}

// Table renders rows inside an outer UTF-8 border with a double rule under
// the header and no inner column lines.
type Table struct {
	header []Cell
	rows   [][]Cell
	style  *Style
}

func NewTable(style *Style, header ...Cell) *Table {
	return &Table{header: header, style: style}
}

// AddRow appends a row. Missing trailing cells render empty.
func (t *Table) AddRow(cells ...Cell) {
	t.rows = append(t.rows, cells)
}

// Rows returns the number of body rows.
func (t *Table) Rows() int {
	return len(t.rows)
}

func (t *Table) columns() int {
	n := len(t.header)
	for _, row := range t.rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Widths returns the display width of every column.
func (t *Table) Widths() []int {
	widths := make([]int, t.columns())
	measure := func(row []Cell) {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell.Text); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) line(widths []int, row []Cell) string {
	var b strings.Builder
	b.WriteString("│ ")
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		var cell Cell
		if i < len(row) {
			cell = row[i]
		}
		b.WriteString(t.style.Paint(runewidth.FillRight(cell.Text, w), cell.Style))
	}
	b.WriteString(" │\n")
	return b.String()
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	widths := t.Widths()
	inner := 2
	for i, width := range widths {
		inner += width
		if i > 0 {
			inner += 2
		}
	}

	var b strings.Builder
	b.WriteString("┌" + strings.Repeat("─", inner) + "┐\n")
	if len(t.header) > 0 {
		b.WriteString(t.line(widths, t.header))
		b.WriteString("╞" + strings.Repeat("═", inner) + "╡\n")
	}
	for _, row := range t.rows {
		b.WriteString(t.line(widths, row))
	}
	b.WriteString("└" + strings.Repeat("─", inner) + "┘\n")

	_, err := io.WriteString(w, b.String())
	return err
}

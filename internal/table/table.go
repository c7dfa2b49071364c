// Package table holds the output model of structure recovery: cell grids,
// per-table parsing reports, and ordered table collections.
package table

import (
	"sort"
	"strings"

	"github.com/structable/structable/internal/geometry"
)

// Cell is one rectangular region of a recovered table. A spanning cell keeps
// its row/column indices at the top-left position it covers and records the
// covered extent in RowSpan/ColSpan.
type Cell struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
	BBox    geometry.Rect

	// Fragments assigned to this cell, in the order they were assigned.
	Fragments []geometry.TextFragment

	// Spanning is true when the cell covers more than one row or column band.
	Spanning bool
}

// Text concatenates the cell's fragments in reading order: top to bottom,
// then left to right within a line.
func (c *Cell) Text() string {
	if len(c.Fragments) == 0 {
		return ""
	}
	frags := make([]geometry.TextFragment, len(c.Fragments))
	copy(frags, c.Fragments)
	sort.SliceStable(frags, func(i, j int) bool {
		ci, cj := frags[i].BBox.Center(), frags[j].BBox.Center()
		if ci.Y != cj.Y {
			return ci.Y < cj.Y
		}
		return ci.X < cj.X
	})

	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		if s := strings.TrimSpace(f.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Empty reports whether the cell received no fragments.
func (c *Cell) Empty() bool { return len(c.Fragments) == 0 }

// ParsingReport is the per-table quality summary. Accuracy and Whitespace
// are percentages in [0,100]; Order is the 1-based position of the table on
// its page.
type ParsingReport struct {
	Accuracy   float64 `json:"accuracy"`
	Whitespace float64 `json:"whitespace"`
	Order      int     `json:"order"`
	Page       int     `json:"page"`
}

// Table is an ordered two-dimensional grid of cells recovered from one page.
type Table struct {
	Page   int
	Order  int
	BBox   geometry.Rect
	Report ParsingReport

	cells [][]Cell
}

// New allocates a rows×cols table with cell indices prefilled and spans of 1.
func New(page, rows, cols int) *Table {
	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
		for c := range cells[r] {
			cells[r][c] = Cell{Row: r, Col: c, RowSpan: 1, ColSpan: 1}
		}
	}
	return &Table{Page: page, cells: cells}
}

// Rows returns the number of row bands in the table.
func (t *Table) Rows() int { return len(t.cells) }

// Cols returns the number of column bands in the table.
func (t *Table) Cols() int {
	if len(t.cells) == 0 {
		return 0
	}
	return len(t.cells[0])
}

// Cell returns the cell at the given position, or nil when out of range.
func (t *Table) Cell(row, col int) *Cell {
	if row < 0 || row >= t.Rows() || col < 0 || col >= t.Cols() {
		return nil
	}
	return &t.cells[row][col]
}

// Cells returns every cell in row-major order, including positions covered
// by a spanning cell.
func (t *Table) Cells() [][]Cell { return t.cells }

// Data renders the table as rows of cell text. Positions covered by a
// spanning cell other than its top-left anchor render as empty strings, so
// wide entries are never duplicated or truncated.
func (t *Table) Data() [][]string {
	out := make([][]string, t.Rows())
	for r := range t.cells {
		out[r] = make([]string, t.Cols())
		for c := range t.cells[r] {
			cell := &t.cells[r][c]
			if cell.Row == r && cell.Col == c {
				out[r][c] = cell.Text()
			}
		}
	}
	return out
}

// FragmentCount returns the number of fragments assigned across all cells.
func (t *Table) FragmentCount() int {
	n := 0
	for r := range t.cells {
		for c := range t.cells[r] {
			n += len(t.cells[r][c].Fragments)
		}
	}
	return n
}

// List is an ordered collection of tables across pages.
type List []*Table

// Sort orders the list by page number, then by within-page extraction order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Page != l[j].Page {
			return l[i].Page < l[j].Page
		}
		return l[i].Order < l[j].Order
	})
}

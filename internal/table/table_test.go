package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structable/structable/internal/geometry"
)

func frag(text string, x0, y0, x1, y1 float64) geometry.TextFragment {
	return geometry.TextFragment{Text: text, BBox: geometry.NewRect(x0, y0, x1, y1)}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		name      string
		fragments []geometry.TextFragment
		expected  string
	}{
		{
			name:     "empty_cell",
			expected: "",
		},
		{
			name: "reading_order_top_to_bottom",
			fragments: []geometry.TextFragment{
				frag("world", 0, 10, 20, 18),
				frag("hello", 0, 0, 20, 8),
			},
			expected: "hello world",
		},
		{
			name: "reading_order_left_to_right_within_line",
			fragments: []geometry.TextFragment{
				frag("b", 30, 0, 40, 8),
				frag("a", 0, 0, 10, 8),
			},
			expected: "a b",
		},
		{
			name: "whitespace_only_fragments_dropped",
			fragments: []geometry.TextFragment{
				frag("  ", 0, 0, 5, 8),
				frag("x", 10, 0, 15, 8),
			},
			expected: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := Cell{Fragments: tt.fragments}
			assert.Equal(t, tt.expected, cell.Text())
		})
	}
}

func TestNewTable(t *testing.T) {
	tbl := New(2, 3, 4)

	assert.Equal(t, 2, tbl.Page)
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, 4, tbl.Cols())

	cell := tbl.Cell(1, 2)
	require.NotNil(t, cell)
	assert.Equal(t, 1, cell.Row)
	assert.Equal(t, 2, cell.Col)
	assert.Equal(t, 1, cell.RowSpan)
	assert.Equal(t, 1, cell.ColSpan)

	assert.Nil(t, tbl.Cell(3, 0))
	assert.Nil(t, tbl.Cell(0, -1))
}

func TestTableData(t *testing.T) {
	tbl := New(1, 2, 2)
	tbl.Cell(0, 0).Fragments = []geometry.TextFragment{frag("a", 0, 0, 5, 8)}
	tbl.Cell(1, 1).Fragments = []geometry.TextFragment{frag("d", 10, 10, 15, 18)}

	assert.Equal(t, [][]string{{"a", ""}, {"", "d"}}, tbl.Data())
}

func TestTableDataSpanningCell(t *testing.T) {
	tbl := New(1, 1, 3)

	// Columns 1 and 2 merged into one spanning cell anchored at column 1.
	anchor := tbl.Cell(0, 1)
	anchor.ColSpan = 2
	anchor.Spanning = true
	anchor.Fragments = []geometry.TextFragment{frag("wide entry", 10, 0, 40, 8)}
	covered := tbl.Cell(0, 2)
	covered.Row = 0
	covered.Col = 1

	data := tbl.Data()
	require.Len(t, data, 1)
	assert.Equal(t, []string{"", "wide entry", ""}, data[0],
		"spanning text renders once at the anchor, covered positions stay blank")
}

func TestFragmentCount(t *testing.T) {
	tbl := New(1, 2, 2)
	assert.Equal(t, 0, tbl.FragmentCount())

	tbl.Cell(0, 0).Fragments = []geometry.TextFragment{frag("a", 0, 0, 5, 8), frag("b", 6, 0, 9, 8)}
	tbl.Cell(1, 0).Fragments = []geometry.TextFragment{frag("c", 0, 10, 5, 18)}
	assert.Equal(t, 3, tbl.FragmentCount())
}

func TestListSort(t *testing.T) {
	list := List{
		{Page: 2, Order: 1},
		{Page: 1, Order: 2},
		{Page: 1, Order: 1},
		{Page: 2, Order: 2},
	}

	list.Sort()

	got := make([][2]int, len(list))
	for i, tbl := range list {
		got[i] = [2]int{tbl.Page, tbl.Order}
	}
	assert.Equal(t, [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}}, got)
}

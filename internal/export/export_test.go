package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structable/structable/internal/geometry"
	"github.com/structable/structable/internal/table"
)

func sampleTable(page, order int) *table.Table {
	tbl := table.New(page, 2, 2)
	tbl.Order = order
	tbl.BBox = geometry.Rect{X0: 0, Y0: 0, X1: 20, Y1: 20}
	tbl.Report = table.ParsingReport{Accuracy: 95.5, Whitespace: 10, Order: order, Page: page}

	texts := [][]string{{"name", "price"}, {"apple", "1.50"}}
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			cell := tbl.Cell(r, c)
			cell.BBox = geometry.Rect{
				X0: float64(c * 10), Y0: float64(r * 10),
				X1: float64(c*10 + 10), Y1: float64(r*10 + 10),
			}
			cell.Fragments = []geometry.TextFragment{{Text: texts[r][c], BBox: cell.BBox}}
		}
	}
	return tbl
}

func TestToJSON(t *testing.T) {
	doc := ToJSON(table.List{sampleTable(1, 1)})

	require.Len(t, doc.Tables, 1)
	tj := doc.Tables[0]

	assert.Equal(t, 1, tj.Page)
	assert.Equal(t, 1, tj.Order)
	assert.Equal(t, [4]float64{0, 0, 20, 20}, tj.BBox)
	assert.Equal(t, [][]string{{"name", "price"}, {"apple", "1.50"}}, tj.Rows)
	assert.Equal(t, 95.5, tj.Report.Accuracy)

	require.Len(t, tj.CellsMeta, 4)
	assert.Equal(t, CellMeta{Row: 0, Col: 0, RowSpan: 1, ColSpan: 1, BBox: [4]float64{0, 0, 10, 10}}, tj.CellsMeta[0])
}

func TestToJSONSpanningCellEmittedOnce(t *testing.T) {
	tbl := sampleTable(1, 1)
	anchor := tbl.Cell(0, 0)
	anchor.ColSpan = 2
	anchor.Spanning = true
	covered := tbl.Cell(0, 1)
	covered.Row = 0
	covered.Col = 0

	doc := ToJSON(table.List{tbl})

	require.Len(t, doc.Tables[0].CellsMeta, 3, "covered positions carry no meta entry")
	assert.Equal(t, 2, doc.Tables[0].CellsMeta[0].ColSpan)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, table.List{sampleTable(2, 1)})
	require.NoError(t, err)

	var decoded DocumentJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Tables, 1)
	assert.Equal(t, 2, decoded.Tables[0].Page)
}

func TestWriteCSVSingleTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, table.List{sampleTable(1, 1)})
	require.NoError(t, err)

	assert.Equal(t, "name,price\napple,1.50\n", buf.String(),
		"a single table has no separator header")
}

func TestWriteCSVMultipleTables(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, table.List{sampleTable(1, 1), sampleTable(2, 1)})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "page=1")
	assert.Contains(t, lines[3], "page=2")
}

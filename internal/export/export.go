// Package export serializes recovered tables to JSON and CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/structable/structable/internal/table"
)

// CellMeta describes one anchor cell's position and geometry in the output.
type CellMeta struct {
	Row     int        `json:"row"`
	Col     int        `json:"col"`
	RowSpan int        `json:"rowspan"`
	ColSpan int        `json:"colspan"`
	BBox    [4]float64 `json:"bbox"`
}

// TableJSON is the serialized form of one recovered table.
type TableJSON struct {
	Page      int                 `json:"page"`
	Order     int                 `json:"order"`
	BBox      [4]float64          `json:"bbox"`
	Rows      [][]string          `json:"rows"`
	CellsMeta []CellMeta          `json:"cells_meta"`
	Report    table.ParsingReport `json:"report"`
}

// DocumentJSON wraps every table recovered from a document.
type DocumentJSON struct {
	Tables []TableJSON `json:"tables"`
}

// ToJSON converts a table list to its serializable form.
func ToJSON(tables table.List) DocumentJSON {
	doc := DocumentJSON{Tables: make([]TableJSON, 0, len(tables))}
	for _, t := range tables {
		tj := TableJSON{
			Page:   t.Page,
			Order:  t.Order,
			BBox:   [4]float64{t.BBox.X0, t.BBox.Y0, t.BBox.X1, t.BBox.Y1},
			Rows:   t.Data(),
			Report: t.Report,
		}
		for r := 0; r < t.Rows(); r++ {
			for c := 0; c < t.Cols(); c++ {
				cell := t.Cell(r, c)
				if cell.Row != r || cell.Col != c {
					continue // covered by a spanning anchor elsewhere
				}
				tj.CellsMeta = append(tj.CellsMeta, CellMeta{
					Row:     cell.Row,
					Col:     cell.Col,
					RowSpan: cell.RowSpan,
					ColSpan: cell.ColSpan,
					BBox:    [4]float64{cell.BBox.X0, cell.BBox.Y0, cell.BBox.X1, cell.BBox.Y1},
				})
			}
		}
		doc.Tables = append(doc.Tables, tj)
	}
	return doc
}

// WriteJSON writes the tables as an indented JSON document.
func WriteJSON(w io.Writer, tables table.List) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToJSON(tables)); err != nil {
		return fmt.Errorf("failed to encode tables: %w", err)
	}
	return nil
}

// WriteCSV writes each table's rows as CSV records. Tables are separated by
// a comment-style header record carrying the page and order, so multi-table
// output stays unambiguous in a single file.
func WriteCSV(w io.Writer, tables table.List) error {
	cw := csv.NewWriter(w)
	for i, t := range tables {
		if len(tables) > 1 {
			header := fmt.Sprintf("# table page=%d order=%d accuracy=%.2f", t.Page, t.Order, t.Report.Accuracy)
			if err := cw.Write([]string{header}); err != nil {
				return fmt.Errorf("failed to write table header: %w", err)
			}
		}
		for _, row := range t.Data() {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		if i < len(tables)-1 {
			cw.Flush()
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv write failed: %w", err)
	}
	return nil
}

package structure

import (
	"sort"

	"github.com/structable/structable/internal/geometry"
	"github.com/structable/structable/internal/table"
)

// StreamStructurer recovers table structure from text alignment alone. Row
// bands come from vertical-gap clustering, column bands from clustering
// fragment left edges across all rows, so columns are global to the table
// rather than per-row.
type StreamStructurer struct {
	config StreamConfig
}

// NewStreamStructurer creates a stream structurer with default thresholds.
func NewStreamStructurer() *StreamStructurer {
	return NewStreamStructurerWithConfig(DefaultStreamConfig())
}

// NewStreamStructurerWithConfig creates a stream structurer with custom
// thresholds.
func NewStreamStructurerWithConfig(config StreamConfig) *StreamStructurer {
	return &StreamStructurer{config: config}
}

// Method returns "stream".
func (ss *StreamStructurer) Method() string { return "stream" }

// Structure clusters the page's fragments into tables. A page with a single
// row or column of text still yields a 1×N or N×1 table; a page with no
// fragments yields no tables and no error.
func (ss *StreamStructurer) Structure(page *geometry.PageGeometry) ([]*table.Table, error) {
	if len(page.Fragments) == 0 {
		return nil, nil
	}

	medianHeight := medianFragmentHeight(page.Fragments)
	blocks := ss.splitBlocks(page.Fragments, medianHeight)

	var tables []*table.Table
	for _, block := range blocks {
		if t := ss.structureBlock(page.Number, block, medianHeight); t != nil {
			tables = append(tables, t)
		}
	}
	for i, t := range tables {
		t.Order = i + 1
	}
	return tables, nil
}

// splitBlocks partitions fragments into vertically separated groups, each a
// candidate table. Blocks come out top-to-bottom.
func (ss *StreamStructurer) splitBlocks(fragments []geometry.TextFragment, medianHeight float64) [][]geometry.TextFragment {
	sorted := sortByPosition(fragments)
	gap := ss.config.TableSplitFactor * medianHeight

	var blocks [][]geometry.TextFragment
	current := []geometry.TextFragment{sorted[0]}
	bottom := sorted[0].BBox.Y1

	for _, frag := range sorted[1:] {
		if frag.BBox.Y0-bottom > gap {
			blocks = append(blocks, current)
			current = nil
		}
		current = append(current, frag)
		if frag.BBox.Y1 > bottom {
			bottom = frag.BBox.Y1
		}
	}
	blocks = append(blocks, current)
	return blocks
}

// structureBlock builds one table from a block of fragments.
func (ss *StreamStructurer) structureBlock(page int, fragments []geometry.TextFragment, medianHeight float64) *table.Table {
	rows := ss.clusterRows(fragments, medianHeight)
	cols := ss.clusterColumns(fragments, medianHeight)
	if len(rows) == 0 || len(cols) == 0 {
		return nil
	}

	t := table.New(page, len(rows), len(cols))
	bbox := fragments[0].BBox
	for _, f := range fragments[1:] {
		bbox = bbox.Union(f.BBox)
	}
	t.BBox = bbox

	ss.fillCellBoxes(t, rows, cols)
	ss.assignFragments(t, fragments, rows, cols)
	return t
}

// rowBand is a horizontal stripe of the table holding one row of cells.
type rowBand struct {
	Top    float64
	Bottom float64
}

// colBand is a vertical stripe shared by every row.
type colBand struct {
	Left  float64
	Right float64
}

// clusterRows sorts fragments by vertical position and merges fragments into
// a band while the vertical gap stays under the row-gap threshold.
func (ss *StreamStructurer) clusterRows(fragments []geometry.TextFragment, medianHeight float64) []rowBand {
	sorted := sortByPosition(fragments)
	gap := ss.config.RowGapFactor * medianHeight

	var bands []rowBand
	current := rowBand{Top: sorted[0].BBox.Y0, Bottom: sorted[0].BBox.Y1}
	for _, frag := range sorted[1:] {
		if frag.BBox.Y0-current.Bottom > gap {
			bands = append(bands, current)
			current = rowBand{Top: frag.BBox.Y0, Bottom: frag.BBox.Y1}
			continue
		}
		if frag.BBox.Y1 > current.Bottom {
			current.Bottom = frag.BBox.Y1
		}
		if frag.BBox.Y0 < current.Top {
			current.Top = frag.BBox.Y0
		}
	}
	bands = append(bands, current)
	return bands
}

// clusterColumns clusters fragment left edges across all rows into column
// start positions; each band runs to the next start, the last to the block's
// right edge. Bands are global, not per-row.
func (ss *StreamStructurer) clusterColumns(fragments []geometry.TextFragment, medianHeight float64) []colBand {
	gap := ss.config.ColGapFactor * medianHeight

	lefts := make([]float64, 0, len(fragments))
	right := fragments[0].BBox.X1
	for _, f := range fragments {
		lefts = append(lefts, f.BBox.X0)
		if f.BBox.X1 > right {
			right = f.BBox.X1
		}
	}
	sort.Float64s(lefts)

	// Cluster within gap, keeping the cluster minimum as the band start.
	starts := []float64{lefts[0]}
	last := lefts[0]
	for _, l := range lefts[1:] {
		if l-last > gap {
			starts = append(starts, l)
		}
		last = l
	}

	bands := make([]colBand, len(starts))
	for i, s := range starts {
		b := colBand{Left: s, Right: right}
		if i < len(starts)-1 {
			b.Right = starts[i+1]
		}
		bands[i] = b
	}
	return bands
}

// fillCellBoxes derives every cell's bounding box from its bands.
func (ss *StreamStructurer) fillCellBoxes(t *table.Table, rows []rowBand, cols []colBand) {
	for r := range rows {
		for c := range cols {
			cell := t.Cell(r, c)
			cell.BBox = geometry.Rect{
				X0: cols[c].Left,
				Y0: rows[r].Top,
				X1: cols[c].Right,
				Y1: rows[r].Bottom,
			}
		}
	}
}

// assignFragments places fragments by bounding-box center containment
// against the inferred bands. A fragment whose box crosses several column
// bands merges those cells into one spanning cell so wide free-text entries
// survive without truncation.
func (ss *StreamStructurer) assignFragments(t *table.Table, fragments []geometry.TextFragment, rows []rowBand, cols []colBand) {
	tol := ss.config.Tolerance
	for _, frag := range fragments {
		center := frag.BBox.Center()
		r := findRowBand(rows, center.Y, tol)
		if r < 0 {
			continue
		}

		first := findColBand(cols, frag.BBox.X0+tol)
		last := findColBand(cols, frag.BBox.X1-tol)
		if first < 0 {
			first = findColBand(cols, center.X)
		}
		if first < 0 {
			continue
		}
		if last < first {
			last = first
		}

		if last > first {
			ss.mergeColumns(t, r, first, last)
		}
		pos := t.Cell(r, first)
		anchor := t.Cell(pos.Row, pos.Col)
		anchor.Fragments = append(anchor.Fragments, frag)
	}
}

// mergeColumns merges cells [first..last] of row r into one spanning cell
// anchored at the leftmost covered column.
func (ss *StreamStructurer) mergeColumns(t *table.Table, r, first, last int) {
	anchorCol := t.Cell(r, first).Col
	anchor := t.Cell(r, anchorCol)
	for c := first; c <= last; c++ {
		cell := t.Cell(r, c)
		if cell.Col < anchorCol {
			// A previous merge already covers part of this run; fold into
			// the earlier anchor.
			anchorCol = cell.Col
			anchor = t.Cell(r, anchorCol)
		}
	}
	// The folded anchor may already span past this run; never shrink it.
	if end := anchorCol + anchor.ColSpan - 1; end > last {
		last = end
	}
	for c := anchorCol; c <= last; c++ {
		cell := t.Cell(r, c)
		if c != anchorCol && len(cell.Fragments) > 0 {
			anchor.Fragments = append(anchor.Fragments, cell.Fragments...)
			cell.Fragments = nil
		}
		cell.Row = r
		cell.Col = anchorCol
	}
	anchor.ColSpan = last - anchorCol + 1
	anchor.Spanning = anchor.ColSpan > 1
	anchor.BBox = geometry.Rect{
		X0: t.Cell(r, anchorCol).BBox.X0,
		Y0: anchor.BBox.Y0,
		X1: t.Cell(r, last).BBox.X1,
		Y1: anchor.BBox.Y1,
	}
}

// sortByPosition returns fragments ordered top-to-bottom, left-to-right.
func sortByPosition(fragments []geometry.TextFragment) []geometry.TextFragment {
	sorted := make([]geometry.TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})
	return sorted
}

// findRowBand locates the band containing y, widened by tol.
func findRowBand(rows []rowBand, y, tol float64) int {
	for i, b := range rows {
		if y >= b.Top-tol && y <= b.Bottom+tol {
			return i
		}
	}
	return -1
}

// findColBand locates the band containing x.
func findColBand(cols []colBand, x float64) int {
	for i, b := range cols {
		if x >= b.Left && x < b.Right {
			return i
		}
	}
	if len(cols) > 0 && x == cols[len(cols)-1].Right {
		return len(cols) - 1
	}
	return -1
}

// medianFragmentHeight returns the median bounding-box height, the basis for
// the page-adaptive gap thresholds.
func medianFragmentHeight(fragments []geometry.TextFragment) float64 {
	heights := make([]float64, 0, len(fragments))
	for _, f := range fragments {
		if h := f.BBox.Height(); h > 0 {
			heights = append(heights, h)
		}
	}
	if len(heights) == 0 {
		return 1.0
	}
	sort.Float64s(heights)
	mid := len(heights) / 2
	if len(heights)%2 == 1 {
		return heights[mid]
	}
	return (heights[mid-1] + heights[mid]) / 2
}

package structure

import (
	"fmt"
	"math"
	"sort"

	"github.com/structable/structable/internal/geometry"
	"github.com/structable/structable/internal/table"
)

// LatticeStructurer recovers table structure from ruling lines: canonical
// lines are intersected into a boundary grid, cells missing internal
// dividers are merged into spanning cells, and fragments are assigned by
// bounding-box center containment.
type LatticeStructurer struct {
	config     LatticeConfig
	reconciler *Reconciler
}

// NewLatticeStructurer creates a lattice structurer with default thresholds.
func NewLatticeStructurer() *LatticeStructurer {
	return NewLatticeStructurerWithConfig(DefaultLatticeConfig())
}

// NewLatticeStructurerWithConfig creates a lattice structurer with custom
// thresholds.
func NewLatticeStructurerWithConfig(config LatticeConfig) *LatticeStructurer {
	return &LatticeStructurer{
		config:     config,
		reconciler: NewReconcilerWithConfig(config.Reconciler),
	}
}

// Method returns "lattice".
func (ls *LatticeStructurer) Method() string { return "lattice" }

// Structure builds one table from the page's ruling lines. It returns
// ErrInsufficientStructure when fewer than two canonical lines exist per
// orientation, so callers can fall back to stream extraction.
func (ls *LatticeStructurer) Structure(page *geometry.PageGeometry) ([]*table.Table, error) {
	horizontals, verticals, err := ls.reconciler.Reconcile(page.Lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientStructure, err)
	}
	if len(horizontals) < 2 || len(verticals) < 2 {
		return nil, fmt.Errorf("%w: %d horizontal and %d vertical canonical lines",
			ErrInsufficientStructure, len(horizontals), len(verticals))
	}

	ys, xs := ls.boundaries(horizontals, verticals)
	if len(ys) < 2 || len(xs) < 2 {
		return nil, fmt.Errorf("%w: lines never cross", ErrInsufficientStructure)
	}

	t := table.New(page.Number, len(ys)-1, len(xs)-1)
	t.Order = 1
	t.BBox = geometry.Rect{X0: xs[0], Y0: ys[0], X1: xs[len(xs)-1], Y1: ys[len(ys)-1]}

	ls.mergeSpanningCells(t, ys, xs, horizontals, verticals)
	ls.assignFragments(t, page.Fragments, ys, xs)

	return []*table.Table{t}, nil
}

// boundaries computes row and column boundary coordinates from canonical
// line intersections. Near-duplicate boundaries within tolerance collapse to
// the lexicographically lower coordinate.
func (ls *LatticeStructurer) boundaries(horizontals, verticals []CanonicalLine) (ys, xs []float64) {
	tol := ls.config.Tolerance

	var rawYs, rawXs []float64
	for _, h := range horizontals {
		for _, v := range verticals {
			if ls.cross(h, v) {
				rawYs = append(rawYs, h.Position)
				rawXs = append(rawXs, v.Position)
			}
		}
	}

	return dedupeSorted(rawYs, tol), dedupeSorted(rawXs, tol)
}

// cross reports whether a horizontal and a vertical canonical line intersect
// within tolerance.
func (ls *LatticeStructurer) cross(h, v CanonicalLine) bool {
	tol := ls.config.Tolerance
	return v.Position >= h.Start-tol && v.Position <= h.End+tol &&
		h.Position >= v.Start-tol && h.Position <= v.End+tol
}

// dedupeSorted sorts values and collapses runs within tol, keeping the
// lowest value of each run as canonical.
func dedupeSorted(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)
	out := []float64{values[0]}
	for _, v := range values[1:] {
		if v-out[len(out)-1] < tol {
			continue
		}
		out = append(out, v)
	}
	return out
}

// hasDivider reports whether any canonical line sits at position pos and
// covers [start, end].
func (ls *LatticeStructurer) hasDivider(lines []CanonicalLine, pos, start, end float64) bool {
	tol := ls.config.Tolerance
	for _, l := range lines {
		if math.Abs(l.Position-pos) <= tol && l.Covers(start, end, tol) {
			return true
		}
	}
	return false
}

// mergeSpanningCells flood-fills grid positions connected by missing
// internal dividers into spanning cells. A component filling its bounding
// rectangle becomes one spanning cell anchored at its top-left position,
// with covered positions pointing at the anchor through their Row/Col
// indices. A non-rectangular component is decomposed into per-row runs so
// that anchor boxes never overlap a closed cell outside the component.
func (ls *LatticeStructurer) mergeSpanningCells(t *table.Table, ys, xs []float64, horizontals, verticals []CanonicalLine) {
	rows, cols := t.Rows(), t.Cols()

	// rightOpen[r][c]: no vertical divider between (r,c) and (r,c+1).
	// downOpen[r][c]: no horizontal divider between (r,c) and (r+1,c).
	rightOpen := make([][]bool, rows)
	downOpen := make([][]bool, rows)
	for r := 0; r < rows; r++ {
		rightOpen[r] = make([]bool, cols)
		downOpen[r] = make([]bool, cols)
		for c := 0; c < cols; c++ {
			if c < cols-1 {
				rightOpen[r][c] = !ls.hasDivider(verticals, xs[c+1], ys[r], ys[r+1])
			}
			if r < rows-1 {
				downOpen[r][c] = !ls.hasDivider(horizontals, ys[r+1], xs[c], xs[c+1])
			}
		}
	}

	visited := make([]bool, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if visited[r*cols+c] {
				continue
			}

			// Collect the connected component of open dividers.
			component := [][2]int{{r, c}}
			visited[r*cols+c] = true
			minR, maxR, minC, maxC := r, r, c, c
			for i := 0; i < len(component); i++ {
				cr, cc := component[i][0], component[i][1]
				neighbors := [][2]int{}
				if cc < cols-1 && rightOpen[cr][cc] {
					neighbors = append(neighbors, [2]int{cr, cc + 1})
				}
				if cc > 0 && rightOpen[cr][cc-1] {
					neighbors = append(neighbors, [2]int{cr, cc - 1})
				}
				if cr < rows-1 && downOpen[cr][cc] {
					neighbors = append(neighbors, [2]int{cr + 1, cc})
				}
				if cr > 0 && downOpen[cr-1][cc] {
					neighbors = append(neighbors, [2]int{cr - 1, cc})
				}
				for _, n := range neighbors {
					if !visited[n[0]*cols+n[1]] {
						visited[n[0]*cols+n[1]] = true
						component = append(component, n)
						minR = min(minR, n[0])
						maxR = max(maxR, n[0])
						minC = min(minC, n[1])
						maxC = max(maxC, n[1])
					}
				}
			}

			if len(component) == (maxR-minR+1)*(maxC-minC+1) {
				for _, pos := range component {
					cell := t.Cell(pos[0], pos[1])
					cell.Row = minR
					cell.Col = minC
				}
				anchor := t.Cell(minR, minC)
				anchor.RowSpan = maxR - minR + 1
				anchor.ColSpan = maxC - minC + 1
				anchor.Spanning = anchor.RowSpan > 1 || anchor.ColSpan > 1
				anchor.BBox = geometry.Rect{X0: xs[minC], Y0: ys[minR], X1: xs[maxC+1], Y1: ys[maxR+1]}
				continue
			}
			ls.splitComponent(t, ys, xs, component, minR, maxR, minC, maxC)
		}
	}

	// Non-anchor positions keep their own bounding box for tiling checks.
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := t.Cell(r, c)
			if cell.BBox.IsEmpty() {
				cell.BBox = geometry.Rect{X0: xs[c], Y0: ys[r], X1: xs[c+1], Y1: ys[r+1]}
			}
		}
	}
}

// splitComponent decomposes a non-rectangular component into contiguous
// per-row runs, each anchored at the run's leftmost position. Runs tile the
// component exactly, so their boxes never reach into cells outside it.
func (ls *LatticeStructurer) splitComponent(t *table.Table, ys, xs []float64, component [][2]int, minR, maxR, minC, maxC int) {
	width := maxC - minC + 1
	member := make([]bool, (maxR-minR+1)*width)
	for _, pos := range component {
		member[(pos[0]-minR)*width+(pos[1]-minC)] = true
	}

	for r := minR; r <= maxR; r++ {
		for c := minC; c <= maxC; {
			if !member[(r-minR)*width+(c-minC)] {
				c++
				continue
			}
			end := c
			for end+1 <= maxC && member[(r-minR)*width+(end+1-minC)] {
				end++
			}

			for cc := c; cc <= end; cc++ {
				cell := t.Cell(r, cc)
				cell.Row = r
				cell.Col = c
			}
			anchor := t.Cell(r, c)
			anchor.RowSpan = 1
			anchor.ColSpan = end - c + 1
			anchor.Spanning = anchor.ColSpan > 1
			anchor.BBox = geometry.Rect{X0: xs[c], Y0: ys[r], X1: xs[end+1], Y1: ys[r+1]}

			c = end + 1
		}
	}
}

// assignFragments places each fragment into the cell containing its
// bounding-box center. Fragments outside every cell are dropped; they count
// against the whitespace metric rather than failing extraction.
func (ls *LatticeStructurer) assignFragments(t *table.Table, fragments []geometry.TextFragment, ys, xs []float64) {
	tol := ls.config.Tolerance
	for _, frag := range fragments {
		center := frag.BBox.Center()
		r := findBand(ys, center.Y, tol)
		c := findBand(xs, center.X, tol)
		if r < 0 || c < 0 {
			continue
		}
		pos := t.Cell(r, c)
		anchor := t.Cell(pos.Row, pos.Col)
		anchor.Fragments = append(anchor.Fragments, frag)
	}
}

// findBand returns the index i such that boundaries[i] <= v <= boundaries[i+1],
// widened by tol at the outer edges, or -1 when v is outside every band.
func findBand(boundaries []float64, v, tol float64) int {
	if len(boundaries) < 2 {
		return -1
	}
	if v < boundaries[0]-tol || v > boundaries[len(boundaries)-1]+tol {
		return -1
	}
	i := sort.SearchFloat64s(boundaries, v)
	if i == 0 {
		return 0
	}
	if i >= len(boundaries) {
		return len(boundaries) - 2
	}
	if v == boundaries[i] && i == len(boundaries)-1 {
		return i - 1
	}
	return i - 1
}

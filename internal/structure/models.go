// Package structure recovers tabular structure from page geometry. Two
// complementary strategies are provided: lattice (ruling-line based) and
// stream (text-alignment based). Both consume a geometry.PageGeometry and
// produce table.Table grids; a Scorer attaches quality reports.
package structure

import (
	"errors"

	"github.com/structable/structable/internal/geometry"
	"github.com/structable/structable/internal/table"
)

var (
	// ErrNoRulingLines is reported by the reconciler when no segments
	// survive noise filtering.
	ErrNoRulingLines = errors.New("no ruling lines found")

	// ErrInsufficientStructure is reported by the lattice structurer when
	// fewer than two canonical lines exist per orientation. Callers may
	// recover by falling back to stream extraction.
	ErrInsufficientStructure = errors.New("insufficient ruling-line structure for lattice extraction")
)

// Structurer is the strategy shared by lattice and stream extraction. A
// structurer is stateless with respect to pages: concurrent calls on
// distinct pages are safe.
type Structurer interface {
	// Method returns the strategy identifier ("lattice" or "stream").
	Method() string

	// Structure recovers zero or more tables from one page. Tables are
	// returned top-to-bottom with 1-based Order already assigned.
	Structure(page *geometry.PageGeometry) ([]*table.Table, error)
}

// CanonicalLine is a deduplicated, merged ruling line. Position is the
// coordinate on the perpendicular axis (y for horizontal lines, x for
// vertical ones); Start and End span the line's own axis.
type CanonicalLine struct {
	Orientation geometry.Orientation
	Position    float64
	Start       float64
	End         float64
}

// Covers reports whether the line spans [start, end] within tol.
func (l CanonicalLine) Covers(start, end, tol float64) bool {
	return l.Start <= start+tol && l.End >= end-tol
}

// ReconcilerConfig tunes line reconciliation.
type ReconcilerConfig struct {
	// Tolerance is the maximum perpendicular distance between segments
	// merged into one canonical line, in page units.
	Tolerance float64

	// MinLength discards segments shorter than this as rendering noise.
	MinLength float64
}

// DefaultReconcilerConfig returns the default reconciliation thresholds.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		Tolerance: 2.0,
		MinLength: 3.0,
	}
}

// LatticeConfig tunes ruling-line based extraction.
type LatticeConfig struct {
	Reconciler ReconcilerConfig

	// Tolerance is used for intersection testing, boundary deduplication
	// and edge-coverage checks.
	Tolerance float64
}

// DefaultLatticeConfig returns the default lattice thresholds.
func DefaultLatticeConfig() LatticeConfig {
	return LatticeConfig{
		Reconciler: DefaultReconcilerConfig(),
		Tolerance:  2.0,
	}
}

// StreamConfig tunes text-alignment based extraction. Gap thresholds are
// factors of the page's median fragment height, so defaults adapt to the
// text size of each page.
type StreamConfig struct {
	// RowGapFactor separates row bands: a vertical gap larger than
	// RowGapFactor×medianHeight starts a new row.
	RowGapFactor float64

	// ColGapFactor clusters fragment edges into column boundaries.
	ColGapFactor float64

	// TableSplitFactor separates distinct tables on one page: a vertical
	// gap larger than TableSplitFactor×medianHeight starts a new table.
	TableSplitFactor float64

	// Tolerance is used for band containment checks.
	Tolerance float64
}

// DefaultStreamConfig returns the default stream thresholds.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		RowGapFactor:     0.5,
		ColGapFactor:     1.0,
		TableSplitFactor: 3.0,
		Tolerance:        2.0,
	}
}

// ScorerConfig tunes report computation.
type ScorerConfig struct {
	// DeviationTolerance is the fraction of a cell's size by which assigned
	// text may overflow the cell boundary without penalty.
	DeviationTolerance float64

	// EmptyCellPenalty is the per-cell penalty for a non-spanning cell that
	// received no fragments.
	EmptyCellPenalty float64
}

// DefaultScorerConfig returns the default scoring thresholds.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		DeviationTolerance: 0.02,
		EmptyCellPenalty:   0.25,
	}
}

package structure

import (
	"sort"

	"github.com/structable/structable/internal/geometry"
)

// Reconciler merges colinear and overlapping raw segments into canonical
// lines. It is a pure transform: input segments are never mutated.
type Reconciler struct {
	config ReconcilerConfig
}

// NewReconciler creates a reconciler with default thresholds.
func NewReconciler() *Reconciler {
	return &Reconciler{config: DefaultReconcilerConfig()}
}

// NewReconcilerWithConfig creates a reconciler with custom thresholds.
func NewReconcilerWithConfig(config ReconcilerConfig) *Reconciler {
	return &Reconciler{config: config}
}

// Reconcile groups segments by orientation and merges near-colinear ones.
// Segments shorter than the minimum length are discarded as noise. It
// returns ErrNoRulingLines when nothing survives filtering, so callers can
// fall back to stream extraction.
func (rc *Reconciler) Reconcile(segments []geometry.LineSegment) (horizontals, verticals []CanonicalLine, err error) {
	var hs, vs []geometry.LineSegment
	for _, s := range segments {
		if s.Length() < rc.config.MinLength {
			continue
		}
		switch s.Orientation {
		case geometry.Horizontal:
			hs = append(hs, s)
		case geometry.Vertical:
			vs = append(vs, s)
		}
	}

	horizontals = rc.mergeAligned(hs, geometry.Horizontal)
	verticals = rc.mergeAligned(vs, geometry.Vertical)

	if len(horizontals) == 0 && len(verticals) == 0 {
		return nil, nil, ErrNoRulingLines
	}
	return horizontals, verticals, nil
}

// mergeAligned sorts segments by their perpendicular coordinate and merges
// runs whose positions stay within the tolerance, producing one canonical
// line per run spanning the union of the run's extents.
func (rc *Reconciler) mergeAligned(segments []geometry.LineSegment, orientation geometry.Orientation) []CanonicalLine {
	if len(segments) == 0 {
		return nil
	}

	sorted := make([]geometry.LineSegment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Position(), sorted[j].Position()
		if pi != pj {
			return pi < pj
		}
		si, _ := sorted[i].Extent()
		sj, _ := sorted[j].Extent()
		return si < sj
	})

	var lines []CanonicalLine
	start, end := sorted[0].Extent()
	current := CanonicalLine{
		Orientation: orientation,
		Position:    sorted[0].Position(),
		Start:       start,
		End:         end,
	}
	merged := 1

	for _, seg := range sorted[1:] {
		pos := seg.Position()
		if pos-current.Position < rc.config.Tolerance {
			s, e := seg.Extent()
			if s < current.Start {
				current.Start = s
			}
			if e > current.End {
				current.End = e
			}
			// Running average keeps the canonical position centered on
			// the whole run.
			current.Position = (current.Position*float64(merged) + pos) / float64(merged+1)
			merged++
			continue
		}
		lines = append(lines, current)
		s, e := seg.Extent()
		current = CanonicalLine{Orientation: orientation, Position: pos, Start: s, End: e}
		merged = 1
	}
	lines = append(lines, current)

	return lines
}

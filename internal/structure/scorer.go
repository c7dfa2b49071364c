package structure

import (
	"github.com/structable/structable/internal/geometry"
	"github.com/structable/structable/internal/table"
)

// Scorer computes per-table quality reports. Scoring never fails: a
// degenerate table gets worst-case metrics instead of an error, and the same
// table with the same thresholds always produces the same report.
type Scorer struct {
	config ScorerConfig
}

// NewScorer creates a scorer with default thresholds.
func NewScorer() *Scorer {
	return &Scorer{config: DefaultScorerConfig()}
}

// NewScorerWithConfig creates a scorer with custom thresholds.
func NewScorerWithConfig(config ScorerConfig) *Scorer {
	return &Scorer{config: config}
}

// Score computes the accuracy and whitespace metrics for a completed table.
// Order and Page are carried into the report from the table.
func (s *Scorer) Score(t *table.Table) table.ParsingReport {
	report := table.ParsingReport{
		Order: t.Order,
		Page:  t.Page,
	}

	if t.Rows() == 0 || t.Cols() == 0 || t.BBox.Area() <= 0 {
		// Worst-case signal for degenerate geometry.
		report.Accuracy = 0
		report.Whitespace = 100
		return report
	}

	report.Accuracy = clampPercent(100 * (1 - s.deviationPenalty(t)))
	report.Whitespace = clampPercent(100 * (1 - s.coverage(t)))
	return report
}

// deviationPenalty sums per-cell penalties normalized by the anchor cell
// count. A cell is penalized when its assigned text overflows the cell
// boundary beyond the tolerance, or when a plain cell received nothing.
func (s *Scorer) deviationPenalty(t *table.Table) float64 {
	var sum float64
	var cells int

	for r := 0; r < t.Rows(); r++ {
		for c := 0; c < t.Cols(); c++ {
			cell := t.Cell(r, c)
			if cell.Row != r || cell.Col != c {
				continue // covered by a spanning anchor
			}
			cells++

			if cell.Empty() {
				if !cell.Spanning {
					sum += s.config.EmptyCellPenalty
				}
				continue
			}

			content := cell.Fragments[0].BBox
			for _, f := range cell.Fragments[1:] {
				content = content.Union(f.BBox)
			}
			sum += s.overflow(content, cell.BBox)
		}
	}

	if cells == 0 {
		return 1
	}
	return sum / float64(cells)
}

// overflow measures how far content spills outside the cell, as a fraction
// of the cell's size, ignoring spills below the deviation tolerance. The
// result is capped at 1 so one bad cell cannot dominate the whole table.
func (s *Scorer) overflow(content, cell geometry.Rect) float64 {
	if cell.Width() <= 0 || cell.Height() <= 0 {
		return 1
	}

	dx := max(0.0, cell.X0-content.X0) + max(0.0, content.X1-cell.X1)
	dy := max(0.0, cell.Y0-content.Y0) + max(0.0, content.Y1-cell.Y1)

	dev := dx/cell.Width() + dy/cell.Height()
	if dev <= s.config.DeviationTolerance {
		return 0
	}
	return min(dev, 1.0)
}

// coverage estimates the fraction of the table area covered by assigned
// fragments, by summing fragment areas clipped to their cells. Per-cell
// coverage is capped at the cell's own area so overlapping fragments cannot
// push coverage past 1.
func (s *Scorer) coverage(t *table.Table) float64 {
	total := t.BBox.Area()
	if total <= 0 {
		return 0
	}

	var covered float64
	for r := 0; r < t.Rows(); r++ {
		for c := 0; c < t.Cols(); c++ {
			cell := t.Cell(r, c)
			if cell.Row != r || cell.Col != c || cell.Empty() {
				continue
			}
			var cellCovered float64
			for _, f := range cell.Fragments {
				if clipped, ok := f.BBox.Intersect(cell.BBox); ok {
					cellCovered += clipped.Area()
				}
			}
			covered += min(cellCovered, cell.BBox.Area())
		}
	}

	return min(covered/total, 1.0)
}

// clampPercent clamps v to [0,100].
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

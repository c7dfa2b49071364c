// Package geometry defines the normalized geometry feed consumed by the
// structure-recovery engine: text fragments with bounding boxes and straight
// line segments, both expressed in a single internal coordinate system.
//
// Internal convention: the vertical axis grows downward, so y=0 is the top of
// the page and row order follows reading order. Feeds that produce PDF-native
// coordinates (y growing upward) must flip at ingestion using the page height.
package geometry

import (
	"fmt"
	"math"
)

// Orientation classifies a line segment as horizontal or vertical.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Point is a position in page coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box. X0,Y0 is the top-left corner and
// X1,Y1 the bottom-right corner in the internal (y-down) convention.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewRect builds a Rect from two arbitrary corner points, normalizing the
// coordinate order.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Area returns the rectangle's area.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// IsEmpty reports whether the rectangle has no extent.
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether the point lies inside the rectangle, borders
// included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// Intersect returns the overlap of r and other and whether it is non-empty.
func (r Rect) Intersect(other Rect) (Rect, bool) {
	out := Rect{
		X0: math.Max(r.X0, other.X0),
		Y0: math.Max(r.Y0, other.Y0),
		X1: math.Min(r.X1, other.X1),
		Y1: math.Min(r.Y1, other.Y1),
	}
	if out.X1 <= out.X0 || out.Y1 <= out.Y0 {
		return Rect{}, false
	}
	return out, true
}

// TextFragment is a run of text with a known position. Fragments are
// immutable once produced by a feed.
type TextFragment struct {
	Text string `json:"text"`
	BBox Rect   `json:"bbox"`
}

// LineSegment is a raw horizontal or vertical ruling segment as reported by
// the feed, before reconciliation.
type LineSegment struct {
	Orientation Orientation `json:"orientation"`
	X0          float64     `json:"x0"`
	Y0          float64     `json:"y0"`
	X1          float64     `json:"x1"`
	Y1          float64     `json:"y1"`
}

// Length returns the segment's extent along its own axis.
func (s LineSegment) Length() float64 {
	dx := s.X1 - s.X0
	dy := s.Y1 - s.Y0
	return math.Sqrt(dx*dx + dy*dy)
}

// Position returns the segment's coordinate on the perpendicular axis: the y
// of a horizontal segment, the x of a vertical one.
func (s LineSegment) Position() float64 {
	if s.Orientation == Horizontal {
		return (s.Y0 + s.Y1) / 2
	}
	return (s.X0 + s.X1) / 2
}

// Extent returns the segment's start and end along its own axis, ordered.
func (s LineSegment) Extent() (start, end float64) {
	if s.Orientation == Horizontal {
		return math.Min(s.X0, s.X1), math.Max(s.X0, s.X1)
	}
	return math.Min(s.Y0, s.Y1), math.Max(s.Y0, s.Y1)
}

// PageGeometry is everything the engine knows about one page.
type PageGeometry struct {
	Number    int            `json:"number"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Fragments []TextFragment `json:"fragments"`
	Lines     []LineSegment  `json:"lines"`
}

// Validate checks the page for obviously malformed geometry.
func (p *PageGeometry) Validate() error {
	if p.Number < 1 {
		return fmt.Errorf("page number must be positive, got %d", p.Number)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("page %d has non-positive dimensions %gx%g", p.Number, p.Width, p.Height)
	}
	for i, f := range p.Fragments {
		if f.BBox.X1 < f.BBox.X0 || f.BBox.Y1 < f.BBox.Y0 {
			return fmt.Errorf("page %d fragment %d has inverted bounding box", p.Number, i)
		}
	}
	for i, l := range p.Lines {
		if l.Orientation != Horizontal && l.Orientation != Vertical {
			return fmt.Errorf("page %d line %d has unknown orientation %q", p.Number, i, l.Orientation)
		}
	}
	return nil
}

// Feed supplies per-page geometry. Implementations must be safe for
// concurrent Page calls on distinct page numbers.
type Feed interface {
	// PageCount returns the number of pages available from the feed.
	PageCount() int
	// Page returns the geometry for a 1-based page number.
	Page(number int) (*PageGeometry, error)
}

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRect(t *testing.T) {
	tests := []struct {
		name     string
		x0, y0   float64
		x1, y1   float64
		expected Rect
	}{
		{
			name: "already_normalized",
			x0:   1, y0: 2, x1: 3, y1: 4,
			expected: Rect{X0: 1, Y0: 2, X1: 3, Y1: 4},
		},
		{
			name: "inverted_both_axes",
			x0:   3, y0: 4, x1: 1, y1: 2,
			expected: Rect{X0: 1, Y0: 2, X1: 3, Y1: 4},
		},
		{
			name: "inverted_y_only",
			x0:   0, y0: 10, x1: 5, y1: 0,
			expected: Rect{X0: 0, Y0: 0, X1: 5, Y1: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewRect(tt.x0, tt.y0, tt.x1, tt.y1))
		})
	}
}

func TestRectOperations(t *testing.T) {
	r := Rect{X0: 0, Y0: 0, X1: 10, Y1: 20}

	assert.Equal(t, 10.0, r.Width())
	assert.Equal(t, 20.0, r.Height())
	assert.Equal(t, 200.0, r.Area())
	assert.Equal(t, Point{X: 5, Y: 10}, r.Center())
	assert.False(t, r.IsEmpty())
	assert.True(t, Rect{}.IsEmpty())

	assert.True(t, r.Contains(Point{X: 5, Y: 5}))
	assert.True(t, r.Contains(Point{X: 0, Y: 0}), "boundary points are inside")
	assert.False(t, r.Contains(Point{X: 11, Y: 5}))

	union := r.Union(Rect{X0: 5, Y0: 15, X1: 15, Y1: 25})
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 15, Y1: 25}, union)
}

func TestRectIntersect(t *testing.T) {
	r := Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}

	clipped, ok := r.Intersect(Rect{X0: 5, Y0: 5, X1: 15, Y1: 15})
	require.True(t, ok)
	assert.Equal(t, Rect{X0: 5, Y0: 5, X1: 10, Y1: 10}, clipped)

	_, ok = r.Intersect(Rect{X0: 20, Y0: 20, X1: 30, Y1: 30})
	assert.False(t, ok, "disjoint rects should not intersect")
}

func TestLineSegment(t *testing.T) {
	h := LineSegment{Orientation: Horizontal, X0: 10, Y0: 5, X1: 50, Y1: 5}
	assert.Equal(t, 40.0, h.Length())
	assert.Equal(t, 5.0, h.Position())
	start, end := h.Extent()
	assert.Equal(t, 10.0, start)
	assert.Equal(t, 50.0, end)

	v := LineSegment{Orientation: Vertical, X0: 3, Y0: 100, X1: 3, Y1: 20}
	assert.Equal(t, 80.0, v.Length())
	assert.Equal(t, 3.0, v.Position())
	start, end = v.Extent()
	assert.Equal(t, 20.0, start, "extent is ordered even for reversed segments")
	assert.Equal(t, 100.0, end)
}

func TestPageGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		page    PageGeometry
		wantErr bool
	}{
		{
			name: "valid_page",
			page: PageGeometry{
				Number: 1, Width: 612, Height: 792,
				Fragments: []TextFragment{{Text: "a", BBox: Rect{X0: 0, Y0: 0, X1: 5, Y1: 5}}},
				Lines:     []LineSegment{{Orientation: Horizontal, X0: 0, Y0: 1, X1: 9, Y1: 1}},
			},
		},
		{
			name:    "zero_page_number",
			page:    PageGeometry{Number: 0, Width: 612, Height: 792},
			wantErr: true,
		},
		{
			name:    "non_positive_dimensions",
			page:    PageGeometry{Number: 1, Width: 0, Height: 792},
			wantErr: true,
		},
		{
			name: "inverted_fragment_bbox",
			page: PageGeometry{
				Number: 1, Width: 612, Height: 792,
				Fragments: []TextFragment{{BBox: Rect{X0: 5, Y0: 5, X1: 0, Y1: 0}}},
			},
			wantErr: true,
		},
		{
			name: "unknown_line_orientation",
			page: PageGeometry{
				Number: 1, Width: 612, Height: 792,
				Lines: []LineSegment{{Orientation: "diagonal"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.page.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

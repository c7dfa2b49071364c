package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structable/structable/internal/geometry"
)

func hseg(y, x0, x1 float64) geometry.LineSegment {
	return geometry.LineSegment{Orientation: geometry.Horizontal, X0: x0, Y0: y, X1: x1, Y1: y}
}

func vseg(x, y0, y1 float64) geometry.LineSegment {
	return geometry.LineSegment{Orientation: geometry.Vertical, X0: x, Y0: y0, X1: x, Y1: y1}
}

func TestReconcileMergesColinearSegments(t *testing.T) {
	rc := NewReconciler()

	// Two halves of the same ruling line, drawn 1pt apart vertically.
	horizontals, verticals, err := rc.Reconcile([]geometry.LineSegment{
		hseg(100, 0, 50),
		hseg(101, 50, 120),
	})
	require.NoError(t, err)
	assert.Empty(t, verticals)
	require.Len(t, horizontals, 1)

	line := horizontals[0]
	assert.Equal(t, geometry.Horizontal, line.Orientation)
	assert.InDelta(t, 100.5, line.Position, 1e-9, "canonical position is the run average")
	assert.Equal(t, 0.0, line.Start)
	assert.Equal(t, 120.0, line.End)
}

func TestReconcileKeepsSeparatedLines(t *testing.T) {
	rc := NewReconciler()

	horizontals, _, err := rc.Reconcile([]geometry.LineSegment{
		hseg(10, 0, 100),
		hseg(50, 0, 100),
		hseg(90, 0, 100),
	})
	require.NoError(t, err)
	require.Len(t, horizontals, 3)
	assert.Equal(t, 10.0, horizontals[0].Position)
	assert.Equal(t, 50.0, horizontals[1].Position)
	assert.Equal(t, 90.0, horizontals[2].Position)
}

func TestReconcileDiscardsShortSegments(t *testing.T) {
	rc := NewReconcilerWithConfig(ReconcilerConfig{Tolerance: 2.0, MinLength: 3.0})

	horizontals, verticals, err := rc.Reconcile([]geometry.LineSegment{
		hseg(10, 0, 2), // below minimum length, rendering noise
		vseg(5, 0, 100),
	})
	require.NoError(t, err)
	assert.Empty(t, horizontals)
	require.Len(t, verticals, 1)
	assert.Equal(t, 5.0, verticals[0].Position)
}

func TestReconcileNoRulingLines(t *testing.T) {
	rc := NewReconciler()

	tests := []struct {
		name     string
		segments []geometry.LineSegment
	}{
		{name: "no_segments"},
		{
			name:     "only_noise",
			segments: []geometry.LineSegment{hseg(10, 0, 1), vseg(5, 0, 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := rc.Reconcile(tt.segments)
			assert.ErrorIs(t, err, ErrNoRulingLines)
		})
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	rc := NewReconciler()

	segments := []geometry.LineSegment{hseg(101, 50, 120), hseg(100, 0, 50)}
	original := make([]geometry.LineSegment, len(segments))
	copy(original, segments)

	_, _, err := rc.Reconcile(segments)
	require.NoError(t, err)
	assert.Equal(t, original, segments)
}

func TestCanonicalLineCovers(t *testing.T) {
	line := CanonicalLine{Orientation: geometry.Horizontal, Position: 10, Start: 0, End: 100}

	assert.True(t, line.Covers(0, 100, 2.0))
	assert.True(t, line.Covers(-1, 101, 2.0), "tolerance widens the covered span")
	assert.False(t, line.Covers(0, 150, 2.0))
}

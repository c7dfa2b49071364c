package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageSelectorResolve(t *testing.T) {
	tests := []struct {
		name      string
		selector  PageSelector
		pageCount int
		expected  []int
		wantErr   bool
	}{
		{
			name:      "empty_expression_defaults_to_first_page",
			selector:  PageSelector{},
			pageCount: 10,
			expected:  []int{1},
		},
		{
			name:      "all_pages",
			selector:  PageSelector{Expression: "all"},
			pageCount: 4,
			expected:  []int{1, 2, 3, 4},
		},
		{
			name:      "single_page",
			selector:  PageSelector{Expression: "3"},
			pageCount: 10,
			expected:  []int{3},
		},
		{
			name:      "list_and_range",
			selector:  PageSelector{Expression: "1,3-5"},
			pageCount: 10,
			expected:  []int{1, 3, 4, 5},
		},
		{
			name:      "open_range_to_end",
			selector:  PageSelector{Expression: "2-end"},
			pageCount: 5,
			expected:  []int{2, 3, 4, 5},
		},
		{
			name:      "overlapping_terms_deduplicated",
			selector:  PageSelector{Expression: "1-3,2-4"},
			pageCount: 10,
			expected:  []int{1, 2, 3, 4},
		},
		{
			name:      "whitespace_tolerated",
			selector:  PageSelector{Expression: " 1 , 3 - 4 "},
			pageCount: 10,
			expected:  []int{1, 3, 4},
		},
		{
			name:      "explicit_overrides_expression",
			selector:  PageSelector{Expression: "all", Explicit: []int{5, 2, 2}},
			pageCount: 10,
			expected:  []int{2, 5},
		},
		{
			name:      "page_past_end",
			selector:  PageSelector{Expression: "11"},
			pageCount: 10,
			wantErr:   true,
		},
		{
			name:      "zero_page",
			selector:  PageSelector{Expression: "0"},
			pageCount: 10,
			wantErr:   true,
		},
		{
			name:      "inverted_range",
			selector:  PageSelector{Expression: "5-3"},
			pageCount: 10,
			wantErr:   true,
		},
		{
			name:      "garbage_term",
			selector:  PageSelector{Expression: "1,x"},
			pageCount: 10,
			wantErr:   true,
		},
		{
			name:      "empty_term",
			selector:  PageSelector{Expression: "1,,3"},
			pageCount: 10,
			wantErr:   true,
		},
		{
			name:      "explicit_page_past_end",
			selector:  PageSelector{Explicit: []int{1, 99}},
			pageCount: 10,
			wantErr:   true,
		},
		{
			name:      "empty_feed",
			selector:  PageSelector{Expression: "1"},
			pageCount: 0,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := tt.selector.Resolve(tt.pageCount)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSelector)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, pages)
		})
	}
}

// Package batch dispatches page extraction across workers and assembles
// ordered results with per-page status reporting.
package batch

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidSelector is returned when a page selection is malformed or
// references a page the feed does not have. It fails the whole batch: a bad
// selector is a caller usage error, not a data condition.
var ErrInvalidSelector = errors.New("invalid page selector")

// PageSelector picks the pages to extract, either as an explicit set or as a
// range expression. When Explicit is non-empty it takes precedence.
//
// Expressions are comma-separated terms: a page number ("3"), a range
// ("2-5"), an open range ("4-end"), or "all". An empty expression selects
// page 1.
type PageSelector struct {
	Expression string `json:"expression,omitempty"`
	Explicit   []int  `json:"explicit,omitempty"`
}

// Resolve expands the selector into a sorted, deduplicated list of page
// numbers, validated against the feed's page count.
func (s PageSelector) Resolve(pageCount int) ([]int, error) {
	if pageCount < 1 {
		return nil, fmt.Errorf("%w: feed has no pages", ErrInvalidSelector)
	}

	if len(s.Explicit) > 0 {
		return normalizePages(s.Explicit, pageCount)
	}

	expr := strings.TrimSpace(s.Expression)
	if expr == "" {
		expr = "1"
	}
	if expr == "all" {
		pages := make([]int, pageCount)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	var pages []int
	for _, term := range strings.Split(expr, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("%w: empty term in %q", ErrInvalidSelector, expr)
		}
		start, end, err := parseTerm(term, pageCount)
		if err != nil {
			return nil, err
		}
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}
	return normalizePages(pages, pageCount)
}

// parseTerm parses a single selector term into an inclusive page range.
func parseTerm(term string, pageCount int) (start, end int, err error) {
	if a, b, found := strings.Cut(term, "-"); found {
		start, err = strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: bad range start in %q", ErrInvalidSelector, term)
		}
		bs := strings.TrimSpace(b)
		if bs == "end" {
			end = pageCount
		} else {
			end, err = strconv.Atoi(bs)
			if err != nil {
				return 0, 0, fmt.Errorf("%w: bad range end in %q", ErrInvalidSelector, term)
			}
		}
		if start > end {
			return 0, 0, fmt.Errorf("%w: range %q is inverted", ErrInvalidSelector, term)
		}
		return start, end, nil
	}

	p, err := strconv.Atoi(term)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad page number %q", ErrInvalidSelector, term)
	}
	return p, p, nil
}

// normalizePages validates, deduplicates and sorts page numbers.
func normalizePages(pages []int, pageCount int) ([]int, error) {
	seen := make(map[int]bool, len(pages))
	var out []int
	for _, p := range pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("%w: page %d outside 1-%d", ErrInvalidSelector, p, pageCount)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out, nil
}

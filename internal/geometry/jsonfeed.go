package geometry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Vertical axis directions accepted by the JSON feed.
const (
	AxisDown = "down" // y grows toward the bottom of the page (internal convention)
	AxisUp   = "up"   // y grows toward the top of the page (PDF convention)
)

// JSONDocument is the on-disk geometry feed format.
type JSONDocument struct {
	// Axis names the vertical axis direction of the document's coordinates.
	// Empty means "down".
	Axis  string         `json:"axis,omitempty"`
	Pages []PageGeometry `json:"pages"`
}

// JSONFeed serves pages decoded from a JSON geometry document. Coordinates
// are normalized to the internal y-down convention at load time.
type JSONFeed struct {
	pages map[int]*PageGeometry
	count int
}

// OpenJSONFeed reads a JSON geometry document from a file.
func OpenJSONFeed(path string) (*JSONFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geometry feed: %w", err)
	}
	defer f.Close()
	return NewJSONFeed(f)
}

// NewJSONFeed decodes a JSON geometry document from a reader.
func NewJSONFeed(r io.Reader) (*JSONFeed, error) {
	var doc JSONDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode geometry feed: %w", err)
	}
	if doc.Axis != "" && doc.Axis != AxisDown && doc.Axis != AxisUp {
		return nil, fmt.Errorf("unknown axis direction %q", doc.Axis)
	}

	feed := &JSONFeed{pages: make(map[int]*PageGeometry, len(doc.Pages))}
	highest := 0
	for i := range doc.Pages {
		page := doc.Pages[i]
		if doc.Axis == AxisUp {
			flipPage(&page)
		}
		if _, dup := feed.pages[page.Number]; dup {
			return nil, fmt.Errorf("duplicate page number %d in geometry feed", page.Number)
		}
		feed.pages[page.Number] = &page
		if page.Number > highest {
			highest = page.Number
		}
	}
	feed.count = highest
	return feed, nil
}

// PageCount returns the highest page number present in the document.
func (f *JSONFeed) PageCount() int { return f.count }

// Page returns the geometry for the given page number. The page is validated
// on every call so corrupt pages fail in isolation.
func (f *JSONFeed) Page(number int) (*PageGeometry, error) {
	page, ok := f.pages[number]
	if !ok {
		return nil, fmt.Errorf("page %d not present in geometry feed", number)
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

// PageNumbers returns the page numbers present in the feed, ascending.
func (f *JSONFeed) PageNumbers() []int {
	nums := make([]int, 0, len(f.pages))
	for n := range f.pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// flipPage converts a y-up page to the internal y-down convention in place.
func flipPage(p *PageGeometry) {
	h := p.Height
	for i, frag := range p.Fragments {
		p.Fragments[i].BBox = NewRect(frag.BBox.X0, h-frag.BBox.Y0, frag.BBox.X1, h-frag.BBox.Y1)
	}
	for i, line := range p.Lines {
		p.Lines[i].Y0 = h - line.Y0
		p.Lines[i].Y1 = h - line.Y1
		if p.Lines[i].Y0 > p.Lines[i].Y1 {
			p.Lines[i].Y0, p.Lines[i].Y1 = p.Lines[i].Y1, p.Lines[i].Y0
		}
	}
}

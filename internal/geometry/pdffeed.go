package geometry

import (
	"fmt"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Default page dimensions (US Letter, points) used when a page does not
// expose a MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0

	// Text height fallback when the font size is unknown.
	defaultTextHeight = 12.0
)

// PDFFeed produces page geometry directly from a PDF file. Text fragments
// carry real positions; ruling lines are not recovered by this backend, so
// lattice extraction over a PDFFeed reports insufficient structure and
// callers should use stream mode or enable fallback.
type PDFFeed struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	count  int

	mu sync.Mutex
}

// OpenPDFFeed validates and opens a PDF file as a geometry feed.
func OpenPDFFeed(path string) (*PDFFeed, error) {
	if err := api.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("pdf validation failed for %s: %w", path, err)
	}
	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages in %s: %w", path, err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}

	return &PDFFeed{
		path:   path,
		file:   f,
		reader: reader,
		count:  count,
	}, nil
}

// PageCount returns the number of pages in the PDF.
func (f *PDFFeed) PageCount() int { return f.count }

// Page extracts text geometry for a 1-based page number, normalized to the
// internal y-down convention.
func (f *PDFFeed) Page(number int) (*PageGeometry, error) {
	if number < 1 || number > f.count {
		return nil, fmt.Errorf("invalid page number %d (document has %d pages)", number, f.count)
	}

	// The underlying reader caches parsed objects and is not safe for
	// concurrent page access.
	f.mu.Lock()
	defer f.mu.Unlock()

	page := f.reader.Page(number)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d is missing from the PDF page tree", number)
	}

	width, height := pageDimensions(page)

	var fragments []TextFragment
	for _, text := range page.Content().Text {
		h := text.FontSize
		if h == 0 {
			h = defaultTextHeight
		}
		// ledongthuc reports the text baseline in PDF y-up coordinates;
		// flip to y-down.
		fragments = append(fragments, TextFragment{
			Text: text.S,
			BBox: NewRect(text.X, height-text.Y, text.X+text.W, height-(text.Y+h)),
		})
	}

	return &PageGeometry{
		Number:    number,
		Width:     width,
		Height:    height,
		Fragments: fragments,
	}, nil
}

// Close releases the underlying file handle.
func (f *PDFFeed) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// pageDimensions reads the page MediaBox, falling back to US Letter.
func pageDimensions(page pdf.Page) (width, height float64) {
	width, height = defaultPageWidth, defaultPageHeight
	box := page.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return width, height
	}
	x0 := box.Index(0).Float64()
	y0 := box.Index(1).Float64()
	x1 := box.Index(2).Float64()
	y1 := box.Index(3).Float64()
	if x1 > x0 && y1 > y0 {
		width = x1 - x0
		height = y1 - y0
	}
	return width, height
}

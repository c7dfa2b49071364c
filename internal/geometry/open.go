package geometry

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OpenFeed opens a geometry feed based on the file extension: ".json" for a
// pre-extracted geometry document, ".pdf" for direct PDF ingestion. Callers
// should close the feed when it implements io.Closer.
func OpenFeed(path string) (Feed, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return OpenJSONFeed(path)
	case ".pdf":
		return OpenPDFFeed(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q: expected .json or .pdf", filepath.Ext(path))
	}
}

package geometry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPDFFeedMissingFile(t *testing.T) {
	_, err := OpenPDFFeed("/nonexistent/file.pdf")
	assert.Error(t, err)
}

func TestOpenPDFFeedRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not_a_pdf.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, no PDF header"), 0o644))

	_, err := OpenPDFFeed(path)
	assert.Error(t, err, "validation rejects files without PDF structure")
}

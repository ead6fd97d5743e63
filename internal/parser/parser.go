package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/outline"
)

// Parser extracts a document outline from raw document bytes.
type Parser interface {
	Parse(r io.Reader, filename string) (*outline.Result, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename. PDFs go through
// the given extractor; a nil extractor means outline.New().
func ForFile(filename string, ex *outline.Extractor) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{Extractor: ex}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// stem is the filename without directory and extension, used as the
// fallback title for markup documents.
func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// markupLevel maps heading depth 1-3 to an outline level. Deeper headings
// are not part of the outline.
func markupLevel(depth int) (outline.Level, bool) {
	switch depth {
	case 1:
		return outline.H1, true
	case 2:
		return outline.H2, true
	case 3:
		return outline.H3, true
	}
	return "", false
}

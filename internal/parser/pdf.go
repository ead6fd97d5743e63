package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/pdfoutline/internal/outline"
)

// PDFParser recovers an outline from a PDF's typography and layout.
type PDFParser struct {
	Extractor *outline.Extractor
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*outline.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	ex := p.Extractor
	if ex == nil {
		ex = outline.New()
	}
	res, err := ex.Outline(data)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

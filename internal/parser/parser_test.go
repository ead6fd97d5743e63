package parser

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/testpdf"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"a.pdf", "*parser.PDFParser", false},
		{"A.PDF", "*parser.PDFParser", false},
		{"b.md", "*parser.MarkdownParser", false},
		{"b.markdown", "*parser.MarkdownParser", false},
		{"c.html", "*parser.HTMLParser", false},
		{"c.htm", "*parser.HTMLParser", false},
		{"d.docx", "*parser.DOCXParser", false},
		{"e.csv", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ForFile(tt.name, nil)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %s", tt.name)
				}
				if IsSupportedExtension(tt.name) {
					t.Errorf("%s should not be supported", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := typeName(p); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *PDFParser:
		return "*parser.PDFParser"
	case *MarkdownParser:
		return "*parser.MarkdownParser"
	case *HTMLParser:
		return "*parser.HTMLParser"
	case *DOCXParser:
		return "*parser.DOCXParser"
	}
	return "unknown"
}

func TestPDFParser(t *testing.T) {
	b := testpdf.New()
	p := b.AddPage()
	p.Text(72, 80, 24, true, "Site Survey")
	p.Text(72, 140, 16, true, "Background")
	p.Text(72, 200, 11, false, "the survey began in the spring")
	p.Text(72, 240, 11, false, "three sites were visited in turn")
	p.Text(72, 280, 11, false, "each site had its own team")
	p.Text(72, 320, 11, false, "results were pooled at the end")

	res, err := (&PDFParser{}).Parse(bytes.NewReader(b.Bytes()), "survey.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Title != "Site Survey" {
		t.Errorf("Title = %q", res.Title)
	}
	if len(res.Outline) != 1 || res.Outline[0].Text != "Background" {
		t.Errorf("Outline = %+v", res.Outline)
	}

	_, err = (&PDFParser{}).Parse(bytes.NewReader([]byte("garbage")), "bad.pdf")
	if !errors.Is(err, outline.ErrUnparseable) {
		t.Errorf("expected ErrUnparseable, got %v", err)
	}
}

// Package testpdf writes small but valid PDF files for tests: Helvetica text
// (regular and bold) placed at explicit positions plus filled rectangles.
package testpdf

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	PageWidth  = 612.0
	PageHeight = 792.0
)

// Builder accumulates pages and renders them with Bytes.
type Builder struct {
	title string
	pages []*Page
}

// Page collects content-stream operators. Coordinates passed to Text and
// Rect use a top-left origin; they are flipped into PDF user space on write.
type Page struct {
	ops strings.Builder
}

func New() *Builder {
	return &Builder{}
}

// Title sets the /Info /Title metadata entry.
func (b *Builder) Title(t string) *Builder {
	b.title = t
	return b
}

// AddPage appends a US-letter page.
func (b *Builder) AddPage() *Page {
	p := &Page{}
	b.pages = append(b.pages, p)
	return p
}

// Text draws s with its baseline at (x, y).
func (p *Page) Text(x, y, size float64, bold bool, s string) *Page {
	font := "F1"
	if bold {
		font = "F2"
	}
	fmt.Fprintf(&p.ops, "BT /%s %s Tf 1 0 0 1 %s %s Tm (%s) Tj ET\n",
		font, num(size), num(x), num(PageHeight-y), escape(s))
	return p
}

// Rect fills a rectangle whose top-left corner is (x, y).
func (p *Page) Rect(x, y, w, h float64) *Page {
	fmt.Fprintf(&p.ops, "%s %s %s %s re f\n", num(x), num(PageHeight-y-h), num(w), num(h))
	return p
}

// FillGray fills a rectangle in the given gray level, 0 black to 1 white.
func (p *Page) FillGray(x, y, w, h, gray float64) *Page {
	fmt.Fprintf(&p.ops, "q %s g %s %s %s %s re f Q\n", num(gray), num(x), num(PageHeight-y-h), num(w), num(h))
	return p
}

// Path appends a rectangle and ends the path with paint, for example "S",
// "n" or "W n".
func (p *Page) Path(x, y, w, h float64, paint string) *Page {
	fmt.Fprintf(&p.ops, "%s %s %s %s re %s\n", num(x), num(PageHeight-y-h), num(w), num(h), paint)
	return p
}

// Transform concatenates a matrix onto the CTM inside a saved state and
// runs draw there.
func (p *Page) Transform(a, b, c, d, e, f float64, draw func(*Page)) *Page {
	fmt.Fprintf(&p.ops, "q %s %s %s %s %s %s cm\n", num(a), num(b), num(c), num(d), num(e), num(f))
	draw(p)
	p.ops.WriteString("Q\n")
	return p
}

// Bytes renders the document.
func (b *Builder) Bytes() []byte {
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] /FontDescriptor 5 0 R >>",
		"<< /Type /FontDescriptor /FontName /Helvetica-Bold /Flags 262176 /FontWeight 700 /ItalicAngle 0 /Ascent 718 /Descent -207 /CapHeight 718 /StemV 140 /FontBBox [-170 -228 1003 962] >>",
		"<< /Title (" + escape(b.title) + ") /Producer (testpdf) >>",
	}

	var kids []string
	for _, p := range b.pages {
		pageNum := len(objs) + 1
		contentNum := pageNum + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
		content := p.ops.String()
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>", contentNum),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content),
		)
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 %s %s] >>",
		strings.Join(kids, " "), len(b.pages), num(PageWidth), num(PageHeight))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 6 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func num(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// Package pdflayout turns a PDF content stream into the doctree layout model:
// glyphs become spans, spans on a shared baseline become lines, and lines
// stacked at a common location become blocks.
package pdflayout

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// Font descriptor flag bit 19 (ForceBold), PDF 32000-1 table 123.
const forceBoldFlag = 1 << 18

const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Load parses PDF bytes into a Document using DefaultConfig.
func Load(data []byte) (*doctree.Document, error) {
	return LoadWithConfig(data, DefaultConfig())
}

// LoadWithConfig parses PDF bytes into a Document. The underlying reader
// reports malformed objects by panicking; those panics come back as errors.
func LoadWithConfig(data []byte, cfg Config) (doc *doctree.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc = &doctree.Document{Title: metadataTitle(reader)}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		p := reader.Page(i)
		page := doctree.Page{Number: i, Width: defaultPageWidth, Height: defaultPageHeight}
		if p.V.IsNull() {
			doc.Pages = append(doc.Pages, page)
			continue
		}

		box := mediaBox(p)
		page.Width = box.Width()
		page.Height = box.Height()

		content := p.Content()
		glyphs := toGlyphs(content.Text, box, boldFonts(p))
		lines := groupLines(glyphs, cfg)
		blocks := groupBlocks(lines, cfg)
		rects := paintedRects(p, box)
		page.Blocks = attachRegions(blocks, rects, page.Width*page.Height)
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func metadataTitle(r *pdflib.Reader) string {
	return strings.TrimSpace(r.Trailer().Key("Info").Key("Title").Text())
}

// pageBox is a MediaBox in PDF user space (origin bottom-left).
type pageBox struct {
	llx, lly, urx, ury float64
}

func (b pageBox) Width() float64  { return b.urx - b.llx }
func (b pageBox) Height() float64 { return b.ury - b.lly }

// mediaBox walks the page tree upward since MediaBox is inheritable.
func mediaBox(p pdflib.Page) pageBox {
	v := p.V
	for range 32 {
		if v.IsNull() {
			break
		}
		mb := v.Key("MediaBox")
		if mb.Len() == 4 {
			x0, y0 := mb.Index(0).Float64(), mb.Index(1).Float64()
			x1, y1 := mb.Index(2).Float64(), mb.Index(3).Float64()
			b := pageBox{llx: math.Min(x0, x1), lly: math.Min(y0, y1), urx: math.Max(x0, x1), ury: math.Max(y0, y1)}
			if b.Width() > 0 && b.Height() > 0 {
				return b
			}
		}
		v = v.Key("Parent")
	}
	return pageBox{urx: defaultPageWidth, ury: defaultPageHeight}
}

// boldFonts maps base font names to the bold signal declared by their font
// descriptor. Composite fonts keep the descriptor on the descendant font.
func boldFonts(p pdflib.Page) map[string]bool {
	out := make(map[string]bool)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		desc := f.V.Key("FontDescriptor")
		if desc.IsNull() {
			desc = f.V.Key("DescendantFonts").Index(0).Key("FontDescriptor")
		}
		if desc.IsNull() {
			continue
		}
		flags := desc.Key("Flags").Int64()
		weight := desc.Key("FontWeight").Float64()
		if flags&forceBoldFlag != 0 || weight >= 600 {
			out[stripSubset(f.BaseFont())] = true
		}
	}
	return out
}

// stripSubset removes a "ABCDEF+" subset tag from a base font name.
func stripSubset(name string) string {
	if i := strings.Index(name, "+"); i >= 0 {
		return name[i+1:]
	}
	return name
}

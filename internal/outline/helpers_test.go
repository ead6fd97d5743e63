package outline

import (
	"unicode/utf8"

	"github.com/dgallion1/pdfoutline/internal/doctree"
)

const (
	fontRegular = "Helvetica"
	fontBold    = "Helvetica-Bold"
)

// textBlock builds a one-line block with its top edge at y and a glyph
// advance of half the font size.
func textBlock(x, y, size float64, font, text string) doctree.Block {
	w := 0.5 * size * float64(utf8.RuneCountInString(text))
	box := doctree.BBox{X0: x, Y0: y, X1: x + w, Y1: y + size}
	span := doctree.Span{Text: text, Size: size, Font: font, BBox: box}
	return doctree.Block{
		Kind:  doctree.BlockText,
		Lines: []doctree.Line{{Spans: []doctree.Span{span}, BBox: box}},
		BBox:  box,
	}
}

func letterPage(n int, blocks ...doctree.Block) doctree.Page {
	return doctree.Page{Number: n, Width: 612, Height: 792, Blocks: blocks}
}

// bodyText returns left-aligned 11pt paragraphs starting at y, spaced 30
// units apart.
func bodyText(y float64, texts ...string) []doctree.Block {
	out := make([]doctree.Block, len(texts))
	for i, t := range texts {
		out[i] = textBlock(72, y+30*float64(i), 11, fontRegular, t)
	}
	return out
}

var filler = []string{
	"the survey covered regional offices in detail",
	"most respondents reported stable budgets this year",
	"response rates varied between the two cohorts",
	"the appendix lists every instrument used in the field",
}

// evaluatePage runs the default cascade over every text block of a
// single-page document and returns the verdicts keyed by block text.
func evaluatePage(page doctree.Page) map[string]PredicateKind {
	doc := &doctree.Document{Pages: []doctree.Page{page}}
	profile := CollectFontProfile(doc)
	p := &doc.Pages[0]
	ix := newPageIndex(p, DescriptorOrNameBold)
	cascade := DefaultCascade()

	out := make(map[string]PredicateKind)
	for i := range p.Blocks {
		s, ok := ix.byID[i]
		if !ok {
			continue
		}
		props, ok := ix.propsOf(s)
		if !ok {
			continue
		}
		v, kind := cascade.Evaluate(&Candidate{Props: props, Block: s.block, Page: p, Profile: profile, id: i, index: ix})
		if v == Accept {
			kind = "accept:" + kind
		}
		out[props.Text] = kind
	}
	return out
}

// Package doctree holds the per-page layout model produced by a PDF
// content-stream reader: pages own blocks, blocks own lines, lines own spans.
package doctree

// BBox is an axis-aligned box in page space with the origin at the top-left
// corner, so Y0 is the top edge and Y1 the bottom edge.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

func (b BBox) Width() float64   { return b.X1 - b.X0 }
func (b BBox) Height() float64  { return b.Y1 - b.Y0 }
func (b BBox) CenterX() float64 { return (b.X0 + b.X1) / 2 }
func (b BBox) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// IsZero reports whether b has never been set.
func (b BBox) IsZero() bool {
	return b == BBox{}
}

// Union returns the smallest box containing both b and o. A zero box is
// treated as empty.
func (b BBox) Union(o BBox) BBox {
	if b.IsZero() {
		return o
	}
	if o.IsZero() {
		return b
	}
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// Contains reports whether o lies fully inside b (edges inclusive).
func (b BBox) Contains(o BBox) bool {
	return o.X0 >= b.X0 && o.Y0 >= b.Y0 && o.X1 <= b.X1 && o.Y1 <= b.Y1
}

// Span is the smallest text run with a uniform font and size.
type Span struct {
	Text string
	Size float64 // points
	Font string  // base font name, subset prefix removed

	// BoldFlag is set when the font descriptor declares a bold weight
	// (ForceBold flag or FontWeight >= 600).
	BoldFlag bool

	BBox BBox
}

// Line is a run of spans sharing a baseline.
type Line struct {
	Spans []Span
	BBox  BBox
}

// BlockKind distinguishes text blocks from non-text layout regions.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
	BlockTable
)

func (k BlockKind) String() string {
	switch k {
	case BlockText:
		return "text"
	case BlockImage:
		return "image"
	case BlockTable:
		return "table"
	default:
		return "unknown"
	}
}

// Block is a layout unit: a maximal run of lines placed at a common location,
// or a non-text region (image, table frame) with only a bounding box.
type Block struct {
	Kind  BlockKind
	Lines []Line
	BBox  BBox

	// Shaded is set when a filled drawing rectangle sits behind the block.
	Shaded bool
}

// Spans iterates every span of the block in line order.
func (b *Block) Spans(yield func(Span) bool) {
	for _, l := range b.Lines {
		for _, s := range l.Spans {
			if !yield(s) {
				return
			}
		}
	}
}

// RawText joins every span's text with single spaces, without trimming or
// normalization.
func (b *Block) RawText() string {
	var n int
	for s := range b.Spans {
		n += len(s.Text) + 1
	}
	buf := make([]byte, 0, n)
	for s := range b.Spans {
		if len(buf) > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// Page is one page of a document.
type Page struct {
	Number int // 1-indexed
	Width  float64
	Height float64
	Blocks []Block
}

// Document is a parsed PDF.
type Document struct {
	Title string // /Info /Title metadata, may be empty
	Pages []Page
}

package pdflayout

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pdfoutline/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// Config controls how glyphs are grouped. Thresholds are multiples of the
// glyph font size unless noted.
type Config struct {
	BaselineTolerance float64 // max baseline drift within one line
	WordGap           float64 // gap that becomes a space between words
	ColumnGap         float64 // gap that splits a row into separate lines
	BlockGap          float64 // vertical gap (x line height) that ends a block
	SizeBreak         float64 // size difference in points that ends a block
}

// DefaultConfig returns thresholds tuned for typical single and two-column
// documents.
func DefaultConfig() Config {
	return Config{
		BaselineTolerance: 0.3,
		WordGap:           0.25,
		ColumnGap:         2.0,
		BlockGap:          0.6,
		SizeBreak:         1.0,
	}
}

// Ascent and descent as fractions of the font size; used to turn a baseline
// position into a glyph box.
const (
	ascent  = 0.8
	descent = 0.2
)

type glyph struct {
	s    string
	font string
	size float64
	bold bool
	x0   float64
	x1   float64
	base float64 // baseline, top-left origin
}

func (g glyph) blank() bool {
	return strings.TrimSpace(g.s) == ""
}

func toGlyphs(texts []pdflib.Text, box pageBox, bold map[string]bool) []glyph {
	out := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" || t.FontSize <= 0 {
			continue
		}
		w := t.W
		if w <= 0 {
			w = 0.5 * t.FontSize * float64(utf8.RuneCountInString(t.S))
		}
		out = append(out, glyph{
			s:    t.S,
			font: t.Font,
			size: t.FontSize,
			bold: bold[t.Font],
			x0:   t.X - box.llx,
			x1:   t.X - box.llx + w,
			base: box.ury - t.Y,
		})
	}
	return out
}

// groupLines buckets glyphs into rows by baseline, then cuts each row at wide
// horizontal gaps so that table cells and columns become separate lines.
func groupLines(glyphs []glyph, cfg Config) []doctree.Line {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b glyph) int {
		return cmp.Compare(a.base, b.base)
	})

	var rows [][]glyph
	var row []glyph
	rowBase := 0.0
	for _, g := range sorted {
		if len(row) > 0 && g.base-rowBase > cfg.BaselineTolerance*g.size {
			rows = append(rows, row)
			row = nil
		}
		if len(row) == 0 {
			rowBase = g.base
		}
		row = append(row, g)
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var lines []doctree.Line
	for _, r := range rows {
		slices.SortStableFunc(r, func(a, b glyph) int {
			return cmp.Compare(a.x0, b.x0)
		})
		start := 0
		for i := 1; i <= len(r); i++ {
			if i < len(r) && r[i].x0-r[i-1].x1 <= cfg.ColumnGap*r[i].size {
				continue
			}
			if l, ok := buildLine(r[start:i], cfg); ok {
				lines = append(lines, l)
			}
			start = i
		}
	}
	return lines
}

// buildLine turns glyphs sorted by x into spans of uniform font and size.
func buildLine(glyphs []glyph, cfg Config) (doctree.Line, bool) {
	var line doctree.Line
	var sb strings.Builder
	var cur doctree.Span
	open := false

	flush := func() {
		if !open {
			return
		}
		cur.Text = sb.String()
		if strings.TrimSpace(cur.Text) != "" {
			line.Spans = append(line.Spans, cur)
			line.BBox = line.BBox.Union(cur.BBox)
		}
		sb.Reset()
		open = false
	}

	var prev glyph
	for i, g := range glyphs {
		box := doctree.BBox{X0: g.x0, Y0: g.base - ascent*g.size, X1: g.x1, Y1: g.base + descent*g.size}
		if !open || g.font != cur.Font || math.Abs(g.size-cur.Size) > 0.05 {
			flush()
			cur = doctree.Span{Font: g.font, Size: g.size, BoldFlag: g.bold}
			open = true
		} else if i > 0 && g.x0-prev.x1 > cfg.WordGap*g.size && !g.blank() && !prev.blank() {
			sb.WriteByte(' ')
		}
		if g.blank() {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(g.s)
			cur.BBox = cur.BBox.Union(box)
		}
		prev = g
	}
	flush()
	return line, len(line.Spans) > 0
}

// lineSize is the character-weighted mean font size of a line.
func lineSize(l doctree.Line) float64 {
	var weighted, chars float64
	for _, s := range l.Spans {
		n := float64(utf8.RuneCountInString(strings.TrimSpace(s.Text)))
		weighted += s.Size * n
		chars += n
	}
	if chars == 0 {
		return 0
	}
	return weighted / chars
}

type openBlock struct {
	block doctree.Block
	size  float64
	last  doctree.BBox
}

// groupBlocks stacks lines into blocks. A line joins an open block when it
// starts just below the block's last line, overlaps it horizontally and has a
// similar size; otherwise it opens a new block.
func groupBlocks(lines []doctree.Line, cfg Config) []doctree.Block {
	sorted := slices.Clone(lines)
	slices.SortStableFunc(sorted, func(a, b doctree.Line) int {
		if c := cmp.Compare(a.BBox.Y0, b.BBox.Y0); c != 0 {
			return c
		}
		return cmp.Compare(a.BBox.X0, b.BBox.X0)
	})

	var blocks []*openBlock
	for _, l := range sorted {
		size := lineSize(l)
		var target *openBlock
		for _, ob := range blocks {
			gap := l.BBox.Y0 - ob.last.Y1
			h := max(ob.last.Height(), l.BBox.Height())
			if gap > cfg.BlockGap*h || gap < -0.5*h {
				continue
			}
			if l.BBox.X0 >= ob.block.BBox.X1 || l.BBox.X1 <= ob.block.BBox.X0 {
				continue
			}
			if math.Abs(size-ob.size) > cfg.SizeBreak {
				continue
			}
			target = ob
		}
		if target == nil {
			blocks = append(blocks, &openBlock{
				block: doctree.Block{Kind: doctree.BlockText, Lines: []doctree.Line{l}, BBox: l.BBox},
				size:  size,
				last:  l.BBox,
			})
			continue
		}
		target.block.Lines = append(target.block.Lines, l)
		target.block.BBox = target.block.BBox.Union(l.BBox)
		target.last = l.BBox
	}

	out := make([]doctree.Block, 0, len(blocks))
	for _, ob := range blocks {
		out = append(out, ob.block)
	}
	return out
}

// Minimum number of cell rectangles inside a frame for it to count as a table.
const minTableCells = 4

// attachRegions turns ruled table frames into table blocks and marks text
// blocks that sit on a non-white fill as shaded. Page-sized rectangles
// (backgrounds, crop marks) are ignored.
func attachRegions(blocks []doctree.Block, rects []paintedRect, pageArea float64) []doctree.Block {
	if len(rects) == 0 {
		return blocks
	}
	var frames, fills []doctree.BBox
	for i, r := range rects {
		area := r.box.Width() * r.box.Height()
		if area <= 0 || area >= 0.9*pageArea {
			continue
		}
		cells := 0
		for j, o := range rects {
			if i != j && o.box != r.box && r.box.Contains(o.box) {
				cells++
			}
		}
		if cells >= minTableCells {
			frames = append(frames, r.box)
		} else if r.shaded && area < 0.5*pageArea {
			fills = append(fills, r.box)
		}
	}

	for i := range blocks {
		for _, f := range fills {
			if grow(f, 1).Contains(blocks[i].BBox) {
				blocks[i].Shaded = true
				break
			}
		}
	}

	for _, f := range frames {
		nested := false
		for _, o := range frames {
			if o != f && o.Contains(f) {
				nested = true
				break
			}
		}
		if !nested {
			blocks = append(blocks, doctree.Block{Kind: doctree.BlockTable, BBox: f})
		}
	}
	return blocks
}

func grow(b doctree.BBox, d float64) doctree.BBox {
	return doctree.BBox{X0: b.X0 - d, Y0: b.Y0 - d, X1: b.X1 + d, Y1: b.Y1 + d}
}

package outline

import (
	"iter"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/doctree"
)

// lineTolerance clusters block centers into distinct text-line positions.
const lineTolerance = 5.0

// trailingLines is how many of the lowest line positions count as footer.
const trailingLines = 3

type sibling struct {
	id    int // position in Page.Blocks
	text  string
	box   doctree.BBox
	block *doctree.Block

	props  BlockProps
	hasTxt bool
	loaded bool
}

// pageIndex answers the geometric neighbor queries of the cascade for one
// page. Text blocks are kept sorted by top edge so vertical windows are
// found by binary search.
type pageIndex struct {
	page      *doctree.Page
	bold      BoldDetector
	byTop     []*sibling
	byID      map[int]*sibling
	maxHeight float64

	numbered   map[int]int // leading "N." value -> block count
	containers []*sibling  // table regions and table/figure caption blocks
	lastLines  []float64
}

func newPageIndex(page *doctree.Page, bold BoldDetector) *pageIndex {
	ix := &pageIndex{
		page:     page,
		bold:     bold,
		byID:     make(map[int]*sibling),
		numbered: make(map[int]int),
	}
	var positions []float64
	for i := range page.Blocks {
		b := &page.Blocks[i]
		switch b.Kind {
		case doctree.BlockTable:
			ix.containers = append(ix.containers, &sibling{id: i, box: b.BBox, block: b})
			continue
		case doctree.BlockText:
		default:
			continue
		}
		s := &sibling{id: i, text: strings.TrimSpace(b.RawText()), box: b.BBox, block: b}
		ix.byTop = append(ix.byTop, s)
		ix.byID[i] = s
		ix.maxHeight = math.Max(ix.maxHeight, b.BBox.Height())
		if n, ok := leadingNumber(s.text); ok {
			ix.numbered[n]++
		}
		if tableCaptionRe.MatchString(strings.ToLower(s.text)) {
			ix.containers = append(ix.containers, s)
		}
		positions = clusterPosition(positions, b.BBox.CenterY())
	}
	slices.SortStableFunc(ix.byTop, func(a, b *sibling) int {
		switch {
		case a.box.Y0 < b.box.Y0:
			return -1
		case a.box.Y0 > b.box.Y0:
			return 1
		}
		return 0
	})
	slices.Sort(positions)
	if len(positions) > trailingLines {
		positions = positions[len(positions)-trailingLines:]
	}
	ix.lastLines = positions
	return ix
}

// clusterPosition folds y into the first known position within tolerance,
// averaging the two, or appends it as a new position.
func clusterPosition(positions []float64, y float64) []float64 {
	for i, p := range positions {
		if math.Abs(p-y) < lineTolerance {
			positions[i] = (p + y) / 2
			return positions
		}
	}
	return append(positions, y)
}

// between yields text blocks whose top edge lies in [lo, hi].
func (ix *pageIndex) between(lo, hi float64) iter.Seq[*sibling] {
	return func(yield func(*sibling) bool) {
		start := sort.Search(len(ix.byTop), func(i int) bool { return ix.byTop[i].box.Y0 >= lo })
		for _, s := range ix.byTop[start:] {
			if s.box.Y0 > hi {
				return
			}
			if !yield(s) {
				return
			}
		}
	}
}

// nearCenter yields the other text blocks whose vertical center is within
// dy of box's center.
func (ix *pageIndex) nearCenter(self int, box doctree.BBox, dy float64) iter.Seq[*sibling] {
	cy := box.CenterY()
	return func(yield func(*sibling) bool) {
		for s := range ix.between(cy-dy-ix.maxHeight, cy+dy) {
			if s.id == self || math.Abs(s.box.CenterY()-cy) >= dy {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

func (ix *pageIndex) propsOf(s *sibling) (BlockProps, bool) {
	if !s.loaded {
		s.props, s.hasTxt = BlockProperties(s.block, ix.bold)
		s.loaded = true
	}
	return s.props, s.hasTxt
}

// formStructure reports at least three other blocks within 200 units
// vertically whose text starts with "N.".
func (ix *pageIndex) formStructure(self int, box doctree.BBox) bool {
	n := 0
	for s := range ix.nearCenter(self, box, 200) {
		if s.text != "" && leadingNumberRe.MatchString(s.text) {
			n++
		}
	}
	return n >= 3
}

// sequentialNumbering reports at least three blocks on the page (this one
// included) numbered within two of this block's leading number.
func (ix *pageIndex) sequentialNumbering(text string) bool {
	cur, ok := leadingNumber(text)
	if !ok {
		return false
	}
	count := 0
	for n := max(1, cur-2); n <= cur+2; n++ {
		count += ix.numbered[n]
	}
	return count >= 3
}

// gridAligned reports at least two other blocks whose centers lie within
// 20 units horizontally and 100 units vertically.
func (ix *pageIndex) gridAligned(self int, box doctree.BBox) bool {
	n := 0
	cx := box.CenterX()
	for s := range ix.nearCenter(self, box, 100) {
		if math.Abs(s.box.CenterX()-cx) < 20 {
			n++
		}
	}
	return n >= 2
}

// inTrailingLines reports whether the box sits on one of the last three
// text-line positions of the page.
func (ix *pageIndex) inTrailingLines(box doctree.BBox) bool {
	cy := box.CenterY()
	for _, y := range ix.lastLines {
		if math.Abs(cy-y) < lineTolerance {
			return true
		}
	}
	return false
}

// insideTable reports whether the box is enclosed by a table region or by
// another block captioned "table N" or "figure N".
func (ix *pageIndex) insideTable(self int, box doctree.BBox) bool {
	for _, c := range ix.containers {
		if c.id != self && c.box.Contains(box) {
			return true
		}
	}
	return false
}

// midParagraph reports text blocks both directly above and directly below
// the box, each within 1.5 block heights.
func (ix *pageIndex) midParagraph(self int, box doctree.BBox) bool {
	gap := box.Height() * 1.5
	above, below := false, false
	for s := range ix.between(box.Y0-gap-ix.maxHeight, box.Y1+gap) {
		if s.id == self {
			continue
		}
		if s.box.Y0 < box.Y0 && box.Y0-s.box.Y1 < gap {
			above = true
		}
		if s.box.Y0 > box.Y1 && s.box.Y0-box.Y1 < gap {
			below = true
		}
		if above && below {
			return true
		}
	}
	return false
}

// emphasisContext reports a non-bold block whose top edge is within three
// block heights and whose size is within 1.5pt of size.
func (ix *pageIndex) emphasisContext(self int, box doctree.BBox, size float64) bool {
	span := box.Height() * 3
	for s := range ix.between(box.Y0-span, box.Y0+span) {
		if s.id == self || math.Abs(s.box.Y0-box.Y0) >= span {
			continue
		}
		p, ok := ix.propsOf(s)
		if ok && !p.Bold && math.Abs(p.FontSize-size) < 1.5 {
			return true
		}
	}
	return false
}

// indentedBelow reports whether the blocks starting within 100 units under
// the box have an average left margin beyond 50 units.
func (ix *pageIndex) indentedBelow(box doctree.BBox) bool {
	var sum float64
	n := 0
	for s := range ix.between(box.Y1, box.Y1+100) {
		if s.box.Y0 <= box.Y1 || s.box.Y0 >= box.Y1+100 {
			continue
		}
		sum += s.box.X0
		n++
	}
	return n > 0 && sum/float64(n) > 50
}

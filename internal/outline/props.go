package outline

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pdfoutline/internal/doctree"
)

// BoldDetector decides whether a span is set in a bold face.
type BoldDetector func(doctree.Span) bool

var boldMarkers = []string{"bold", "black", "heavy", "demi", "semibold"}

// FontNameBold sniffs the font family name for a bold-weight marker. It is
// approximate: custom or obfuscated font names defeat it.
func FontNameBold(s doctree.Span) bool {
	name := strings.ToLower(s.Font)
	for _, m := range boldMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// DescriptorOrNameBold trusts the font descriptor's weight when the backend
// reports one and falls back to the font name.
func DescriptorOrNameBold(s doctree.Span) bool {
	return s.BoldFlag || FontNameBold(s)
}

// BlockProps are the derived properties of one text block.
type BlockProps struct {
	Text     string
	FontSize float64 // character-weighted mean
	Bold     bool    // at least half the characters are bold
	BBox     doctree.BBox
}

// BlockProperties computes the properties of a text block. It returns false
// for non-text blocks and for blocks without visible text.
func BlockProperties(b *doctree.Block, bold BoldDetector) (BlockProps, bool) {
	if b.Kind != doctree.BlockText {
		return BlockProps{}, false
	}
	if bold == nil {
		bold = FontNameBold
	}

	var sb strings.Builder
	var weighted float64
	var chars, boldChars int
	for s := range b.Spans {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte(' ')
		n := utf8.RuneCountInString(text)
		weighted += s.Size * float64(n)
		chars += n
		if bold(s) {
			boldChars += n
		}
	}

	text := collapseSpace(sb.String())
	if text == "" || chars == 0 {
		return BlockProps{}, false
	}
	return BlockProps{
		Text:     text,
		FontSize: weighted / float64(chars),
		Bold:     float64(boldChars)/float64(chars) >= 0.5,
		BBox:     b.BBox,
	}, true
}

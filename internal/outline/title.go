package outline

import "github.com/dgallion1/pdfoutline/internal/doctree"

// DefaultPlaceholderTitle is used when neither the first page nor the
// document metadata yields a title.
const DefaultPlaceholderTitle = "Document"

// VisibleTitle returns the text of the largest-font block on the first page
// that is neither a caption nor page noise, provided it is shorter than 20
// words and not a numbered sub-point. It returns "" otherwise.
func VisibleTitle(doc *doctree.Document, bold BoldDetector) string {
	if len(doc.Pages) == 0 {
		return ""
	}
	page := &doc.Pages[0]

	var best string
	var largest float64
	for i := range page.Blocks {
		p, ok := BlockProperties(&page.Blocks[i], bold)
		if !ok || p.FontSize <= largest || IsCaption(p.Text) || IsPageNoise(p.Text) {
			continue
		}
		largest = p.FontSize
		best = p.Text
	}
	if best == "" || wordCount(best) >= 20 || IsSubpoint(best) {
		return ""
	}
	return best
}

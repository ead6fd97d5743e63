package outline

import (
	"slices"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/doctree"
)

// DefaultFontSize is the average assumed for documents without text.
const DefaultFontSize = 12.0

// FontProfile holds the document-wide font statistics used as thresholds.
type FontProfile struct {
	AvgSize float64   // mean size over every non-blank span
	Sizes   []float64 // distinct sizes, largest first
}

// CollectFontProfile scans every span of the document once.
func CollectFontProfile(doc *doctree.Document) FontProfile {
	var sum float64
	var n int
	seen := make(map[float64]bool)
	var sizes []float64

	for i := range doc.Pages {
		for j := range doc.Pages[i].Blocks {
			b := &doc.Pages[i].Blocks[j]
			if b.Kind != doctree.BlockText {
				continue
			}
			for s := range b.Spans {
				if strings.TrimSpace(s.Text) == "" {
					continue
				}
				sum += s.Size
				n++
				if !seen[s.Size] {
					seen[s.Size] = true
					sizes = append(sizes, s.Size)
				}
			}
		}
	}

	p := FontProfile{AvgSize: DefaultFontSize}
	if n > 0 {
		p.AvgSize = sum / float64(n)
	}
	slices.Sort(sizes)
	slices.Reverse(sizes)
	p.Sizes = sizes
	return p
}

// Largest returns the biggest distinct size, or 0 for an empty profile.
func (p FontProfile) Largest() float64 {
	if len(p.Sizes) == 0 {
		return 0
	}
	return p.Sizes[0]
}

package outline

import "github.com/dgallion1/pdfoutline/internal/doctree"

// LevelInput carries what the level classifier looks at for one heading.
type LevelInput struct {
	Text       string
	FontSize   float64
	Bold       bool
	BBox       doctree.BBox
	PageHeight float64
	// IndentedBelow is set when the content starting under the heading is
	// indented past the left margin.
	IndentedBelow bool
}

// ClassifyLevel assigns a heading level. Numbering depth decides outright;
// otherwise a score over position, length, weight, size tier and case
// maps to H1 (>= 4), H2 (>= 2) or H3.
func ClassifyLevel(in LevelInput, profile FontProfile) Level {
	if lvl, ok := numberingLevel(in.Text); ok {
		return lvl
	}

	score := 0
	if in.PageHeight > 0 {
		switch y := in.BBox.Y0; {
		case y < in.PageHeight*0.2:
			score += 2
		case y < in.PageHeight*0.4:
			score++
		}
	}

	words := wordCount(in.Text)
	switch {
	case words <= 5:
		score++
	case words > 15:
		score -= 2
	}

	if in.Bold {
		score++
	}

	if len(profile.Sizes) > 1 {
		largest := profile.Largest()
		switch {
		case in.FontSize >= largest*0.9:
			score += 2
		case in.FontSize >= largest*0.7:
			score++
		}
	} else if in.FontSize > profile.AvgSize*1.2 {
		score++
	}

	if isUpper(in.Text) && words <= 5 {
		score++
	}
	if in.IndentedBelow {
		score++
	}

	switch {
	case score >= 4:
		return H1
	case score >= 2:
		return H2
	default:
		return H3
	}
}

package outline

import (
	"strings"

	"github.com/dgallion1/pdfoutline/internal/doctree"
)

// Verdict is the outcome of one predicate.
type Verdict int

const (
	Pass Verdict = iota // no opinion, continue with the next predicate
	Accept
	Reject
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "pass"
	}
}

// PredicateKind tags a cascade step.
type PredicateKind string

const (
	KindLength        PredicateKind = "length"
	KindShape         PredicateKind = "shape"
	KindPageNumber    PredicateKind = "page_number"
	KindFormField     PredicateKind = "form_field"
	KindTableRow      PredicateKind = "table_row"
	KindBoldNumbering PredicateKind = "bold_numbering"
	KindSkipText      PredicateKind = "skip_text"
	KindFooter        PredicateKind = "footer"
	KindInsideTable   PredicateKind = "inside_table"

	KindNumberedBold PredicateKind = "numbered_bold"
	KindEmphasized   PredicateKind = "emphasized"
	KindColonLabel   PredicateKind = "colon_label"
	KindIsolatedBold PredicateKind = "isolated_bold"
	KindUniversal    PredicateKind = "universal_pattern"
	KindLargeFont    PredicateKind = "large_font"

	// KindNoSignal is reported when no predicate decided.
	KindNoSignal PredicateKind = "no_signal"
)

// Candidate is a text block under evaluation together with its page context.
type Candidate struct {
	Props   BlockProps
	Block   *doctree.Block
	Page    *doctree.Page
	Profile FontProfile

	id    int
	index *pageIndex
}

// Predicate is one step of a Cascade.
type Predicate struct {
	Kind PredicateKind
	Name string
	Test func(*Candidate) Verdict
}

// Cascade is an ordered list of predicates. The first predicate returning a
// verdict other than Pass decides.
type Cascade []Predicate

// Evaluate runs the cascade over a candidate. A candidate no predicate
// decides on is rejected with KindNoSignal.
func (c Cascade) Evaluate(cand *Candidate) (Verdict, PredicateKind) {
	for _, p := range c {
		if v := p.Test(cand); v != Pass {
			return v, p.Kind
		}
	}
	return Reject, KindNoSignal
}

func rejectIf(b bool) Verdict {
	if b {
		return Reject
	}
	return Pass
}

func acceptIf(b bool) Verdict {
	if b {
		return Accept
	}
	return Pass
}

// DefaultCascade returns the heading cascade: cheap text filters, then
// geometric noise filters, then acceptance signals.
func DefaultCascade() Cascade {
	return Cascade{
		{KindLength, "text length outside [3, 300]", func(c *Candidate) Verdict {
			n := runeLen(c.Props.Text)
			return rejectIf(n < 3 || n > 300)
		}},
		{KindShape, "long text, caption, sub-point or date", func(c *Candidate) Verdict {
			t := c.Props.Text
			return rejectIf(wordCount(t) > 35 || IsCaption(t) || IsSubpoint(t) || IsDate(t))
		}},
		{KindPageNumber, "page number or noise", func(c *Candidate) Verdict {
			return rejectIf(IsPageNoise(c.Props.Text))
		}},
		{KindFormField, "form field or form structure", func(c *Candidate) Verdict {
			t := strings.TrimSpace(c.Props.Text)
			return rejectIf(IsFormField(t) ||
				c.index.formStructure(c.id, c.Props.BBox) ||
				c.index.sequentialNumbering(t))
		}},
		{KindTableRow, "table row content", func(c *Candidate) Verdict {
			return rejectIf(IsRowText(c.Props.Text) || c.index.gridAligned(c.id, c.Props.BBox))
		}},
		{KindBoldNumbering, "bold bare numbering", func(c *Candidate) Verdict {
			return rejectIf(c.Props.Bold && IsBareNumbering(c.Props.Text))
		}},
		{KindSkipText, "digits, page label, date, url or ellipsis", func(c *Candidate) Verdict {
			return rejectIf(IsSkipText(c.Props.Text))
		}},
		{KindFooter, "footer band or trailing lines", func(c *Candidate) Verdict {
			return rejectIf(c.Props.BBox.Y1 > c.Page.Height*0.9 || c.index.inTrailingLines(c.Props.BBox))
		}},
		{KindInsideTable, "inside a table region", func(c *Candidate) Verdict {
			return rejectIf(c.index.insideTable(c.id, c.Props.BBox))
		}},

		{KindNumberedBold, "bold numbered heading", func(c *Candidate) Verdict {
			return acceptIf(c.Props.Bold && IsNumberedHeading(c.Props.Text))
		}},
		{KindEmphasized, "shaded or bold span outside a paragraph", func(c *Candidate) Verdict {
			return acceptIf(emphasized(c) && !c.index.midParagraph(c.id, c.Props.BBox))
		}},
		{KindColonLabel, "single-line colon label", func(c *Candidate) Verdict {
			return acceptIf(IsColonLabel(c.Props.Text))
		}},
		{KindIsolatedBold, "bold text not inside same-size body text", func(c *Candidate) Verdict {
			if !c.Props.Bold {
				return Pass
			}
			if c.index.emphasisContext(c.id, c.Props.BBox, c.Props.FontSize) {
				return Reject
			}
			return Accept
		}},
		{KindUniversal, "universal heading pattern", func(c *Candidate) Verdict {
			return acceptIf(IsUniversalHeading(c.Props.Text))
		}},
		{KindLargeFont, "large font", func(c *Candidate) Verdict {
			avg := c.Profile.AvgSize
			size := c.Props.FontSize
			return acceptIf((c.Props.Bold && size >= avg) || size >= avg*1.15)
		}},
	}
}

// emphasized reports a shaded block or any span set in a bold face by
// name or by font descriptor.
func emphasized(c *Candidate) bool {
	if c.Block.Shaded {
		return true
	}
	for s := range c.Block.Spans {
		if s.BoldFlag || FontNameBold(s) {
			return true
		}
	}
	return false
}

package outline

import (
	"strings"
	"testing"

	"github.com/dgallion1/pdfoutline/internal/doctree"
)

func TestCascade_FirstDecisiveVerdictWins(t *testing.T) {
	var calls []string
	step := func(name string, v Verdict) Predicate {
		return Predicate{Kind: PredicateKind(name), Name: name, Test: func(*Candidate) Verdict {
			calls = append(calls, name)
			return v
		}}
	}
	c := Cascade{step("first", Pass), step("second", Reject), step("third", Accept)}

	v, kind := c.Evaluate(&Candidate{})
	if v != Reject || kind != "second" {
		t.Errorf("got %s/%s, want reject/second", v, kind)
	}
	if len(calls) != 2 {
		t.Errorf("expected evaluation to stop after the deciding predicate, ran %v", calls)
	}
}

func TestCascade_NoSignalRejects(t *testing.T) {
	c := Cascade{{Kind: "noop", Name: "noop", Test: func(*Candidate) Verdict { return Pass }}}
	if v, kind := c.Evaluate(&Candidate{}); v != Reject || kind != KindNoSignal {
		t.Errorf("got %s/%s, want reject/%s", v, kind, KindNoSignal)
	}
}

func TestDefaultCascade_Order(t *testing.T) {
	want := []PredicateKind{
		KindLength, KindShape, KindPageNumber, KindFormField, KindTableRow,
		KindBoldNumbering, KindSkipText, KindFooter, KindInsideTable,
		KindNumberedBold, KindEmphasized, KindColonLabel, KindIsolatedBold,
		KindUniversal, KindLargeFont,
	}
	got := DefaultCascade()
	if len(got) != len(want) {
		t.Fatalf("got %d predicates, want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.Kind != want[i] {
			t.Errorf("predicate %d: got %s, want %s", i, p.Kind, want[i])
		}
	}
}

func TestDefaultCascade_RejectsFormNoise(t *testing.T) {
	page := letterPage(1,
		textBlock(300, 740, 10, fontRegular, "7"),
		textBlock(72, 200, 11, fontRegular, "1. Name"),
		textBlock(72, 230, 11, fontRegular, "2. Date"),
		textBlock(72, 260, 11, fontRegular, "3. Amount"),
	)
	for text, kind := range evaluatePage(page) {
		if strings.HasPrefix(string(kind), "accept:") {
			t.Errorf("%q accepted by %s", text, kind)
		}
	}
}

func TestDefaultCascade_Verdicts(t *testing.T) {
	shaded := textBlock(400, 120, 12, fontRegular, "Highlights")
	shaded.Shaded = true
	table := doctree.Block{Kind: doctree.BlockTable, BBox: doctree.BBox{X0: 50, Y0: 400, X1: 560, Y1: 520}}

	blocks := []doctree.Block{
		textBlock(72, 40, 24, fontBold, "Annual Research Report"),
		textBlock(72, 120, 16, fontBold, "Methods and Data"),
		shaded,
		textBlock(72, 160, 16, fontRegular, "Regional Breakdown"),
		textBlock(72, 260, 11, fontRegular, "the committee met twice during the spring term"),
		textBlock(72, 275, 11, fontBold, "key decisions were deferred"),
		textBlock(72, 290, 11, fontRegular, "until the budget was confirmed by the finance office in may"),
		textBlock(300, 330, 11, fontRegular, "Key findings of the study:"),
		textBlock(420, 360, 11, fontRegular, "Scope: all regions"),
		textBlock(72, 380, 11, fontBold, "2.3 Experimental Setup"),
		table,
		textBlock(100, 420, 14, fontBold, "Quarterly totals"),
	}
	blocks = append(blocks, bodyText(560, filler...)...)
	blocks = append(blocks, textBlock(72, 760, 12, fontBold, "Confidential draft copy"))

	got := evaluatePage(letterPage(1, blocks...))
	want := map[string]PredicateKind{
		"Methods and Data":            "accept:" + KindEmphasized,
		"Highlights":                  "accept:" + KindEmphasized,
		"Regional Breakdown":          "accept:" + KindLargeFont,
		"key decisions were deferred": KindIsolatedBold,
		"Key findings of the study:":  "accept:" + KindColonLabel,
		"Scope: all regions":          "accept:" + KindUniversal,
		"2.3 Experimental Setup":      KindShape,
		"Quarterly totals":            KindInsideTable,
		"Confidential draft copy":     KindFooter,
	}
	for text, kind := range want {
		if got[text] != kind {
			t.Errorf("%q: got %q, want %q", text, got[text], kind)
		}
	}
}

func TestDefaultCascade_IsolatedBoldAccepted(t *testing.T) {
	blocks := []doctree.Block{
		textBlock(72, 40, 24, fontBold, "Annual Research Report"),
		textBlock(300, 200, 8, fontRegular, "prepared by the methods working group"),
		textBlock(72, 210, 11, fontBold, "Principal investigators named"),
		textBlock(300, 224, 8, fontRegular, "and reviewed by the steering board"),
	}
	blocks = append(blocks, bodyText(400, filler...)...)

	got := evaluatePage(letterPage(1, blocks...))
	if kind := got["Principal investigators named"]; kind != "accept:"+KindIsolatedBold {
		t.Errorf("got %q, want accept by %s", kind, KindIsolatedBold)
	}
}

func TestPageIndex_Queries(t *testing.T) {
	numbered := letterPage(1,
		textBlock(72, 100, 11, fontRegular, "1. first item"),
		textBlock(72, 120, 11, fontRegular, "2. second item"),
		textBlock(72, 140, 11, fontRegular, "3. third item"),
		textBlock(72, 160, 11, fontRegular, "4. fourth item"),
		textBlock(72, 600, 11, fontRegular, "9. unrelated"),
	)
	column := letterPage(1,
		textBlock(300, 100, 11, fontRegular, "north"),
		textBlock(300, 130, 11, fontRegular, "south"),
		textBlock(300, 160, 11, fontRegular, "east"),
	)
	row := letterPage(1,
		textBlock(72, 100, 11, fontRegular, "north"),
		textBlock(200, 100, 11, fontRegular, "south"),
		textBlock(350, 100, 11, fontRegular, "east"),
	)
	spread := letterPage(1,
		textBlock(300, 100, 11, fontRegular, "north"),
		textBlock(300, 300, 11, fontRegular, "south"),
		textBlock(300, 500, 11, fontRegular, "east"),
	)
	indented := letterPage(1,
		textBlock(72, 100, 14, fontBold, "Methods"),
		textBlock(90, 130, 11, fontRegular, "sites were chosen at random"),
		textBlock(90, 160, 11, fontRegular, "each site was visited twice"),
	)
	flush := letterPage(1,
		textBlock(36, 100, 14, fontBold, "Methods"),
		textBlock(36, 130, 11, fontRegular, "sites were chosen at random"),
		textBlock(36, 160, 11, fontRegular, "each site was visited twice"),
		textBlock(200, 400, 11, fontRegular, "a distant indented remark"),
	)
	caption := textBlock(60, 300, 10, fontRegular, "Table 2: quarterly totals")
	caption.BBox = doctree.BBox{X0: 60, Y0: 300, X1: 400, Y1: 420}
	captioned := letterPage(1,
		caption,
		textBlock(80, 340, 10, fontRegular, "north region"),
		textBlock(80, 500, 10, fontRegular, "outside the table"),
	)
	framed := letterPage(1,
		doctree.Block{Kind: doctree.BlockTable, BBox: doctree.BBox{X0: 60, Y0: 300, X1: 400, Y1: 420}},
		textBlock(80, 340, 10, fontRegular, "north region"),
	)
	emphasis := letterPage(1,
		textBlock(72, 100, 11, fontBold, "Key finding"),
		textBlock(72, 120, 11, fontRegular, "budgets held steady across offices"),
	)
	loneBold := letterPage(1,
		textBlock(72, 100, 11, fontBold, "Key finding"),
		textBlock(72, 120, 11, fontBold, "Another bold line"),
		textBlock(72, 125, 16, fontRegular, "a much larger line"),
		textBlock(72, 300, 11, fontRegular, "budgets held steady across offices"),
	)

	at := func(p *doctree.Page, i int) doctree.BBox { return p.Blocks[i].BBox }
	tests := []struct {
		name  string
		page  doctree.Page
		query func(ix *pageIndex, p *doctree.Page) bool
		want  bool
	}{
		{"form structure around the first item", numbered, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.formStructure(0, at(p, 0))
		}, true},
		{"no form structure around a distant item", numbered, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.formStructure(4, at(p, 4))
		}, false},
		{"sequential numbering for item 2", numbered, func(ix *pageIndex, _ *doctree.Page) bool {
			return ix.sequentialNumbering("2. second item")
		}, true},
		{"no sequence around item 9", numbered, func(ix *pageIndex, _ *doctree.Page) bool {
			return ix.sequentialNumbering("9. unrelated")
		}, false},
		{"lowest line is trailing", numbered, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.inTrailingLines(at(p, 4))
		}, true},
		{"top line is not trailing", numbered, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.inTrailingLines(at(p, 0))
		}, false},
		{"item between neighbours is mid paragraph", numbered, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.midParagraph(1, at(p, 1))
		}, true},
		{"first item has nothing above", numbered, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.midParagraph(0, at(p, 0))
		}, false},
		{"column of centred cells is grid aligned", column, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.gridAligned(1, at(p, 1))
		}, true},
		{"one row of offset cells is not grid aligned", row, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.gridAligned(1, at(p, 1))
		}, false},
		{"vertically distant cells are not grid aligned", spread, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.gridAligned(1, at(p, 1))
		}, false},
		{"indented lines below", indented, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.indentedBelow(at(p, 0))
		}, true},
		{"flush lines below", flush, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.indentedBelow(at(p, 0))
		}, false},
		{"nothing below", flush, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.indentedBelow(at(p, 3))
		}, false},
		{"enclosed by a table caption block", captioned, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.insideTable(1, at(p, 1))
		}, true},
		{"outside the caption block", captioned, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.insideTable(2, at(p, 2))
		}, false},
		{"caption does not enclose itself", captioned, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.insideTable(0, at(p, 0))
		}, false},
		{"enclosed by a table region", framed, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.insideTable(1, at(p, 1))
		}, true},
		{"regular line of the same size nearby", emphasis, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.emphasisContext(0, at(p, 0), 11)
		}, true},
		{"only bold, larger or distant lines around", loneBold, func(ix *pageIndex, p *doctree.Page) bool {
			return ix.emphasisContext(0, at(p, 0), 11)
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := tt.page
			ix := newPageIndex(&page, FontNameBold)
			if got := tt.query(ix, &page); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

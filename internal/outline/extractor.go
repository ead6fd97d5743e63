package outline

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/doctree"
	"github.com/dgallion1/pdfoutline/internal/pdflayout"
)

// Extractor recovers outlines from PDF bytes. It holds no per-call state
// and may be shared between goroutines.
type Extractor struct {
	log              *slog.Logger
	bold             BoldDetector
	cascade          Cascade
	keepTitleHeading bool
	placeholder      string
	layout           pdflayout.Config
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for per-document debug output.
func WithLogger(log *slog.Logger) Option {
	return func(e *Extractor) {
		if log != nil {
			e.log = log
		}
	}
}

// WithBoldDetector replaces the bold-face signal used for block weights.
func WithBoldDetector(d BoldDetector) Option {
	return func(e *Extractor) {
		if d != nil {
			e.bold = d
		}
	}
}

// WithKeepTitleHeading keeps a first-page block that is both the visible
// title and an accepted heading in the outline. The title then falls back
// to the metadata title or the placeholder.
func WithKeepTitleHeading(keep bool) Option {
	return func(e *Extractor) { e.keepTitleHeading = keep }
}

// WithPlaceholderTitle sets the last-resort title.
func WithPlaceholderTitle(title string) Option {
	return func(e *Extractor) {
		if t := strings.TrimSpace(title); t != "" {
			e.placeholder = t
		}
	}
}

// WithCascade replaces the heading cascade.
func WithCascade(c Cascade) Option {
	return func(e *Extractor) {
		if len(c) > 0 {
			e.cascade = c
		}
	}
}

// WithLayoutConfig tunes how glyphs are grouped into lines and blocks.
func WithLayoutConfig(cfg pdflayout.Config) Option {
	return func(e *Extractor) { e.layout = cfg }
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		log:         slog.New(slog.DiscardHandler),
		bold:        DescriptorOrNameBold,
		cascade:     DefaultCascade(),
		placeholder: DefaultPlaceholderTitle,
		layout:      pdflayout.DefaultConfig(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Outline parses the PDF and extracts its outline. Errors wrap
// ErrUnparseable.
func (e *Extractor) Outline(data []byte) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("%w: %v", ErrUnparseable, r)
		}
	}()

	doc, err := pdflayout.LoadWithConfig(data, e.layout)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	return e.ExtractDocument(doc), nil
}

// ExtractOutline never fails: an unparseable input yields a result whose
// title is "Error: <cause>" and whose outline is empty.
func (e *Extractor) ExtractOutline(data []byte) Result {
	res, err := e.Outline(data)
	if err != nil {
		e.log.Warn("outline extraction failed", "error", err)
		return ErrorResult(err)
	}
	return res
}

// ExtractDocument runs font statistics, block properties, the heading
// cascade, level classification and assembly over a parsed layout.
func (e *Extractor) ExtractDocument(doc *doctree.Document) Result {
	profile := CollectFontProfile(doc)
	visible := VisibleTitle(doc, e.bold)

	var hs []heading
	rejected := make(map[PredicateKind]int)
	for i := range doc.Pages {
		page := &doc.Pages[i]
		ix := newPageIndex(page, e.bold)
		for j := range page.Blocks {
			s, ok := ix.byID[j]
			if !ok {
				continue
			}
			props, ok := ix.propsOf(s)
			if !ok {
				continue
			}
			cand := &Candidate{
				Props:   props,
				Block:   s.block,
				Page:    page,
				Profile: profile,
				id:      s.id,
				index:   ix,
			}
			verdict, kind := e.cascade.Evaluate(cand)
			if verdict != Accept {
				rejected[kind]++
				continue
			}
			hs = append(hs, heading{BlockProps: props, page: pageNumber(page, i), index: ix})
		}
	}

	title := visible
	if title != "" && e.keepTitleHeading && acceptedText(hs, visible) {
		title = ""
	}
	if title == "" {
		title = strings.TrimSpace(doc.Title)
	}
	if title == "" {
		title = e.placeholder
	}
	title = collapseSpace(title)

	entries := assemble(hs, headingKey(title), profile)
	e.log.Debug("outline assembled",
		"pages", len(doc.Pages),
		"avg_font_size", profile.AvgSize,
		"distinct_sizes", len(profile.Sizes),
		"candidates", len(hs),
		"entries", len(entries),
		"rejected", rejectionAttrs(rejected),
	)
	return Result{Title: title, Outline: entries}
}

func pageNumber(p *doctree.Page, i int) int {
	if p.Number > 0 {
		return p.Number
	}
	return i + 1
}

func acceptedText(hs []heading, text string) bool {
	key := headingKey(text)
	for _, h := range hs {
		if headingKey(h.Text) == key {
			return true
		}
	}
	return false
}

func rejectionAttrs(counts map[PredicateKind]int) slog.Value {
	attrs := make([]slog.Attr, 0, len(counts))
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		attrs = append(attrs, slog.Int(string(k), counts[k]))
	}
	return slog.GroupValue(attrs...)
}

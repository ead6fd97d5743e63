package outline

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `#`, `\#`,
)

var orderedMarker = regexp.MustCompile(`^(\d+)([.)])`)

// escapeMarkdown keeps heading text literal, including a leading "1." that
// would otherwise open an ordered list.
func escapeMarkdown(s string) string {
	return orderedMarker.ReplaceAllString(markdownEscaper.Replace(s), `$1\$2`)
}

func depthOf(l Level) int {
	switch l {
	case H2:
		return 1
	case H3:
		return 2
	default:
		return 0
	}
}

// Markdown renders the result as a nested table of contents.
func (r Result) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(r.Title))
	if len(r.Outline) == 0 {
		b.WriteString("_No headings found._\n")
		return b.String()
	}
	// A nested list item needs a parent at the level above, so indentation
	// never grows by more than one step.
	depth := -1
	for _, e := range r.Outline {
		depth = min(depthOf(e.Level), depth+1)
		fmt.Fprintf(&b, "%s- %s (p. %d)\n", strings.Repeat("  ", depth), escapeMarkdown(e.Text), e.Page)
	}
	return b.String()
}

// RenderHTML converts the Markdown table of contents to HTML.
func RenderHTML(r Result) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(r.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

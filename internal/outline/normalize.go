package outline

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var spaceRun = regexp.MustCompile(`\s+`)

// collapseSpace replaces whitespace runs with one space and trims the ends.
func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// headingKey is the dedupe key for heading text: compatibility-normalized
// (ligatures and full-width forms folded), case-folded, whitespace-collapsed.
func headingKey(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return collapseSpace(s)
}

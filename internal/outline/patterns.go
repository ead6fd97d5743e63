package outline

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// word is the Unicode-aware word class used by the heading patterns.
const word = `[\p{L}\p{N}_]`

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

var (
	// Matched against lowercased text.
	datePatterns = compileAll(
		`\b\d{1,2}\s*[-/]\s*`+word+`+\b`,
		`\b`+word+`+\s+\d{1,2},?\s+\d{4}\b`,
		`\b\d{1,2}/\d{1,2}/\d{2,4}\b`,
		`\b\d{4}-\d{2}-\d{2}\b`,
	)

	// Matched against lowercased, trimmed text.
	captionPatterns = compileAll(
		`^table\s+\d+`,
		`^figure\s+\d+`,
		`^fig\s*\d+`,
		`source\s*:`,
		`note\s*:`,
		`^funding\s+source`,
		`^`+word+`+\s*20\d{2}$`,
	)

	formFieldPatterns = compileAll(
		`(?i)^\d+\.\s*$`,
		`(?i)^\d+\.\s+[A-Z][a-z\s]*$`,
		`(?i)^\d+\.\s+[A-Z][A-Z\s+]*$`,
		`(?i)^\d+\.\s+(Whether|Date|Name|Amount|Place)`,
		`(?i)^S\.No\.?\s*$`,
		`(?i)^Rs\.?\s*$`,
		`(?i)^\([a-z]\)`,
	)

	// Matched against lowercased text.
	skipPatterns = compileAll(
		`^\d+$`,
		`^page\s+\d+`,
		`^\d{1,2}/\d{1,2}/\d{4}$`,
		`^www\.|https?://`,
		`^\s*[.]{3,}\s*$`,
	)

	universalPatterns = compileAll(
		`^\d+[.)]\s+`+word+`{3,}.{5,}`,
		`^`+word+`+\s*:\s*.{3,}`,
		`^[A-Z][A-Z\s]{5,20}$`,
	)

	pageNumberRe     = regexp.MustCompile(`^\d{1,3}$`)
	digitRunRe       = regexp.MustCompile(`^[\d.\s\-]{3,10}$`)
	shortQuestionRe  = regexp.MustCompile(`^\d+\.\s+.{1,50}$`)
	leadingNumberRe  = regexp.MustCompile(`^(\d+)\.`)
	repeatedNumberRe = regexp.MustCompile(`^(\d+\.\s*){2,}$`)
	bareNumberRe     = regexp.MustCompile(`^\d+\.$`)
	digitsDotsRe     = regexp.MustCompile(`^[\d.\s]+$`)
	subpointRe       = regexp.MustCompile(`^\d+\.\d+\s+`)
	tableCaptionRe   = regexp.MustCompile(`^(table|fig|figure)\s*\d+`)

	numberedH1Re = regexp.MustCompile(`^\d+\.\s+` + word + `{3,}`)
	numberedH2Re = regexp.MustCompile(`^\d+\.\d+\s+` + word + `{3,}`)
	numberedH3Re = regexp.MustCompile(`^\d+\.\d+\.\d+\s+` + word + `{3,}`)
)

var questionWords = []string{"whether", "name", "date", "amount", "place", "designation", "pay"}

func wordCount(s string) int { return len(strings.Fields(s)) }

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// IsDate reports whether the text contains a calendar-date shape.
func IsDate(text string) bool {
	return anyMatch(datePatterns, strings.ToLower(text))
}

// IsCaption reports table and figure captions, source notes and
// year-labelled captions.
func IsCaption(text string) bool {
	return anyMatch(captionPatterns, strings.ToLower(strings.TrimSpace(text)))
}

// IsSubpoint reports a bare numbered sub-point such as "2.3 ...".
func IsSubpoint(text string) bool {
	return subpointRe.MatchString(strings.TrimSpace(text))
}

// IsPageNoise reports page numbers, short digit runs and text with fewer
// than two meaningful characters.
func IsPageNoise(text string) bool {
	t := strings.TrimSpace(text)
	if pageNumberRe.MatchString(t) || digitRunRe.MatchString(t) {
		return true
	}
	meaningful := strings.NewReplacer(" ", "", ".", "").Replace(t)
	return runeLen(meaningful) <= 1
}

// IsFormField reports form-field labels: bare numbering, short numbered
// capitalized phrases, numbered questions, serial-number markers and
// lettered sub-items.
func IsFormField(text string) bool {
	t := strings.TrimSpace(text)
	if anyMatch(formFieldPatterns, t) {
		return true
	}
	if shortQuestionRe.MatchString(t) && wordCount(t) <= 8 {
		lower := strings.ToLower(t)
		for _, w := range questionWords {
			if strings.Contains(lower, w) {
				return true
			}
		}
	}
	return false
}

// leadingNumber returns N for text starting with "N.".
func leadingNumber(text string) (int, bool) {
	m := leadingNumberRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsRowText reports repeated "N." sequences and short digit/dot strings.
func IsRowText(text string) bool {
	t := strings.TrimSpace(text)
	return repeatedNumberRe.MatchString(t) || (runeLen(t) <= 10 && digitsDotsRe.MatchString(t))
}

// IsBareNumbering reports "N." or "N. N. ..." runs.
func IsBareNumbering(text string) bool {
	t := strings.TrimSpace(text)
	return bareNumberRe.MatchString(t) || repeatedNumberRe.MatchString(t)
}

// IsSkipText reports digits, "page N", D/M/YYYY dates, URLs and ellipses.
func IsSkipText(text string) bool {
	return anyMatch(skipPatterns, strings.ToLower(text))
}

// IsNumberedHeading reports "N. word ..." with at least two words.
func IsNumberedHeading(text string) bool {
	t := strings.TrimSpace(text)
	return numberedH1Re.MatchString(t) && wordCount(t) >= 2
}

// IsColonLabel reports a single-line label of 10-100 characters and at
// least three words ending in a colon.
func IsColonLabel(text string) bool {
	t := strings.TrimSpace(text)
	if !strings.HasSuffix(t, ":") || strings.Contains(t, "\n") {
		return false
	}
	n := runeLen(t)
	return n >= 10 && n <= 100 && wordCount(t) >= 3
}

// IsUniversalHeading reports the generic heading shapes: "N. word...",
// "word: content" and short all-caps phrases.
func IsUniversalHeading(text string) bool {
	return anyMatch(universalPatterns, strings.TrimSpace(text))
}

// numberingLevel maps numbering depth to a level.
func numberingLevel(text string) (Level, bool) {
	t := strings.TrimSpace(text)
	if wordCount(t) < 2 {
		return "", false
	}
	switch {
	case numberedH1Re.MatchString(t):
		return H1, true
	case numberedH2Re.MatchString(t):
		return H2, true
	case numberedH3Re.MatchString(t):
		return H3, true
	}
	return "", false
}

// isUpper reports whether s has at least one cased letter and no
// lowercase ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

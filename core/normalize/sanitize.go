package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// Catalog fields scraped from web sources carry artifacts: percent-encoded
// characters, underscores instead of spaces, continuity parentheticals and
// missing inter-word spacing from concatenated fields.
var (
	verseParenthetical = regexp.MustCompile(`\s*\([^)]*verse[^)]*\)`)
	multiSpace         = regexp.MustCompile(`\s{2,}`)
)

// Sanitize repairs text artifacts in a catalog field for display.
func Sanitize(s string) string {
	// PathUnescape keeps literal plus signs; an invalid escape leaves the
	// text as is.
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = verseParenthetical.ReplaceAllString(s, "")
	s = insertWordBoundaries(s)
	s = multiSpace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// insertWordBoundaries repairs missing spacing from concatenated source
// fields: a space is inserted at a lower-to-upper-case transition, at a
// digit-to-letter transition and after a sentence period.
func insertWordBoundaries(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)

	for i, r := range runes {
		b.WriteRune(r)
		if i+1 >= len(runes) {
			break
		}
		next := runes[i+1]

		switch {
		case unicode.IsLower(r) && unicode.IsUpper(next):
			b.WriteRune(' ')
		case unicode.IsDigit(r) && unicode.IsLetter(next):
			b.WriteRune(' ')
		case r == '.' && (unicode.IsLetter(next) || unicode.IsDigit(next)):
			b.WriteRune(' ')
		}
	}

	return b.String()
}

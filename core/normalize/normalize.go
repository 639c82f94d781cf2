// Package normalize cleans raw user text into a token sequence and repairs
// text artifacts in catalog fields before they are shown to the user.
package normalize

import (
	"strings"
	"unicode"

	"github.com/gothamlabs/oracle/model"
)

// stopWords are dropped when extracting entity mentions from a query.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"do": {}, "does": {}, "did": {},
	"can": {}, "could": {}, "will": {}, "would": {}, "should": {},
	"what": {}, "who": {}, "where": {}, "when": {}, "why": {}, "how": {}, "which": {},
	"tell": {}, "me": {}, "about": {}, "show": {}, "give": {},
	"info": {}, "information": {},
	"of": {}, "on": {}, "in": {}, "at": {}, "to": {}, "for": {}, "with": {}, "from": {}, "by": {},
	"and": {}, "or": {}, "please": {},
	"have": {}, "has": {}, "had": {},
	"i": {}, "you": {}, "we": {},
	"know": {}, "want": {}, "like": {},
}

// Normalize lowercases the input, strips punctuation, collapses whitespace
// and returns the query with its token sequence. Empty input yields an empty
// token sequence, which downstream stages treat as no actionable content.
func Normalize(raw string) *model.Query {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'':
			// Keep apostrophes so possessives like "penguin's" survive
			// until pattern matching.
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return &model.Query{
		Raw:    raw,
		Tokens: strings.Fields(b.String()),
	}
}

// Text returns the normalized text of a query, tokens joined by single spaces.
func Text(q *model.Query) string {
	return strings.Join(q.Tokens, " ")
}

// StripStopWords removes question scaffolding tokens, leaving the tokens
// likely to name an entity.
func StripStopWords(tokens []string) []string {
	var kept []string
	for _, token := range tokens {
		if _, ok := stopWords[token]; ok {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}

// CleanMention trims possessive suffixes and stop words from a mention
// candidate captured by an intent pattern.
func CleanMention(mention string) string {
	tokens := strings.Fields(mention)
	for i, token := range tokens {
		tokens[i] = strings.TrimSuffix(token, "'s")
	}
	return strings.Join(StripStopWords(tokens), " ")
}

package match

import "strings"

// exclusions are well-known proper nouns from other fictional universes.
// Fuzzy matching alone cannot distinguish an unknown word from a word
// belonging to a different domain, so these are rejected before matching.
var exclusions = []string{
	"superman",
	"clark kent",
	"wonder woman",
	"aquaman",
	"green lantern",
	"cyborg",
	"supergirl",
	"shazam",
	"lex luthor",
	"darkseid",
	"doomsday",
	"metropolis",
	"smallville",
	"daily planet",
	"lexcorp",
	"fortress of solitude",
	"krypton",
	"themyscira",
	"atlantis",
	"spider-man",
	"spiderman",
	"iron man",
	"captain america",
	"thor",
	"hulk",
	"thanos",
	"wolverine",
	"deadpool",
	"avengers",
}

// domainTerms mark a query as in-domain even when it also names an excluded
// term, e.g. a comparison of a catalog vehicle against an outside one.
var domainTerms = []string{
	"bat",
	"gotham",
	"wayne",
	"joker",
	"robin",
	"alfred",
	"penguin",
	"riddler",
	"catwoman",
	"arkham",
}

// Guard rejects mentions naming entities known to be outside the domain.
type Guard struct {
	threshold float64
}

// NewGuard creates a scope guard. threshold is the fuzzy similarity above
// which a mention counts as an exclusion match.
func NewGuard(threshold float64) *Guard {
	return &Guard{threshold: threshold}
}

// Check tests a mention against the exclusion set. It returns the matched
// out-of-domain name and true when the mention is out of scope.
func (g *Guard) Check(mention string) (string, bool) {
	mention = strings.ToLower(strings.TrimSpace(mention))
	if mention == "" {
		return "", false
	}

	for _, excluded := range exclusions {
		if mention == excluded || containsPhrase(mention, excluded) {
			return excluded, true
		}
		if Similarity(mention, excluded) >= g.threshold {
			return excluded, true
		}
	}

	return "", false
}

// ContainsDomainTerm reports whether the text names something from the
// domain. Comparative queries with a domain term are not rejected even if
// the other side of the comparison is out of scope.
func (g *Guard) ContainsDomainTerm(text string) bool {
	text = strings.ToLower(text)
	for _, term := range domainTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// containsPhrase reports whether the phrase occurs in text on word
// boundaries.
func containsPhrase(text string, phrase string) bool {
	idx := strings.Index(text, phrase)
	if idx < 0 {
		return false
	}
	before := idx == 0 || text[idx-1] == ' '
	end := idx + len(phrase)
	after := end == len(text) || text[end] == ' '
	return before && after
}

// Package match scores catalog entities against free-text mentions and
// rejects mentions naming entities outside the domain.
package match

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/gothamlabs/oracle/model"
)

// fuzzyCap keeps boosted fuzzy scores below the exact-match score of 1.0.
const fuzzyCap = 0.99

// Matcher ranks candidate entities against a mention string.
type Matcher struct {
	config model.EngineConfig
}

// NewMatcher creates a matcher with the given tuning parameters.
func NewMatcher(config model.EngineConfig) *Matcher {
	return &Matcher{config: config}
}

// Rank scores every entity in the pool against the mention and returns the
// candidates above the fuzzy floor, sorted descending by score. Ties are
// broken by the primary flag, then by shorter name, preferring specific over
// generic. An exact case-insensitive match on name or alias scores 1.0.
func (m *Matcher) Rank(mention string, pool []*model.Entity) []model.MatchCandidate {
	mention = strings.ToLower(strings.TrimSpace(mention))
	if mention == "" || len(pool) == 0 {
		return nil
	}

	var candidates []model.MatchCandidate
	for _, entity := range pool {
		score, matched := m.score(mention, entity)
		if score < m.config.FuzzyFloor {
			continue
		}
		candidates = append(candidates, model.MatchCandidate{
			Entity:  entity,
			Score:   score,
			Matched: matched,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Entity.Primary != b.Entity.Primary {
			return a.Entity.Primary
		}
		if len(a.Entity.Name) != len(b.Entity.Name) {
			return len(a.Entity.Name) < len(b.Entity.Name)
		}
		return a.Entity.Name < b.Entity.Name
	})

	return candidates
}

// AutoAccept reports whether the top candidate is a clear winner: score at
// least the auto-accept threshold and a sufficient margin over the runner-up.
func (m *Matcher) AutoAccept(candidates []model.MatchCandidate) bool {
	if len(candidates) == 0 {
		return false
	}
	if candidates[0].Score < m.config.AutoAcceptScore {
		return false
	}
	if len(candidates) == 1 {
		return true
	}
	return candidates[0].Score-candidates[1].Score >= m.config.AutoAcceptMargin
}

// score returns the best score over the entity's canonical name and aliases,
// and which of them matched.
func (m *Matcher) score(mention string, entity *model.Entity) (float64, string) {
	names := append([]string{entity.Name}, entity.Aliases...)

	best := 0.0
	matched := entity.Name
	for _, name := range names {
		candidate := strings.ToLower(name)
		if candidate == mention {
			return 1.0, name
		}

		score := m.config.EditWeight*Similarity(mention, candidate) +
			m.config.OverlapWeight*tokenOverlap(mention, candidate)
		if score > best {
			best = score
			matched = name
		}
	}

	if entity.Primary {
		best += m.config.PrimaryBoost[entity.Type]
		if len(strings.Fields(entity.Name)) == 1 {
			best += m.config.ShortNameBoost
		}
	}
	if best > fuzzyCap {
		best = fuzzyCap
	}

	return best, matched
}

// Similarity returns the normalized edit-distance similarity of two strings
// in [0,1], where 1 means equal.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(longest)
}

// tokenMatchThreshold is the per-token similarity above which a mention
// token counts as present in the candidate, so single-character typos still
// count as whole-word matches.
const tokenMatchThreshold = 0.8

// tokenOverlap returns the fraction of mention tokens present in the
// candidate's token set, favoring whole-word matches over coincidental
// character overlap. A token counts as present on an exact or near-exact
// match.
func tokenOverlap(mention string, candidate string) float64 {
	mentionTokens := strings.Fields(mention)
	if len(mentionTokens) == 0 {
		return 0.0
	}

	candidateTokens := strings.Fields(candidate)

	hits := 0
	for _, token := range mentionTokens {
		for _, other := range candidateTokens {
			if token == other || Similarity(token, other) >= tokenMatchThreshold {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(mentionTokens))
}

// Package intent maps normalized query text to an intent tag via an ordered
// rule table. Rules are evaluated top to bottom and the first match wins, so
// specific relation patterns take precedence over generic entity lookups.
package intent

import (
	"regexp"
	"strings"

	"github.com/gothamlabs/oracle/core/normalize"
	"github.com/gothamlabs/oracle/model"
)

// Classification is the outcome of rule evaluation: the intent, its relation
// sub-kind and the entity mentions captured by the matching pattern.
type Classification struct {
	Intent   model.Intent
	Topic    model.RelationTopic
	Mentions []string
}

type rule struct {
	pattern *regexp.Regexp
	intent  model.Intent
	topic   model.RelationTopic
}

// Classifier evaluates the ordered rule table.
type Classifier struct {
	rules []rule
}

// NewClassifier creates a classifier with the default rule table.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules()}
}

// defaultRules builds the rule table. Order is deliberate: comparisons
// first, then vehicle attribute topics, then graph relations, then ownership
// and finally generic lookups, so that "what weapons are on the batplane" is
// not swallowed by a generic entity lookup.
func defaultRules() []rule {
	return []rule{
		// Comparisons
		{regexp.MustCompile(`^(?:compare )?(.+?) (?:vs|versus) (.+)$`), model.IntentComparison, model.TopicNone},
		{regexp.MustCompile(`^compare (.+?) (?:and|with|to) (.+)$`), model.IntentComparison, model.TopicNone},

		// Vehicle attribute topics
		{regexp.MustCompile(`weapons? (?:are |is )?(?:on|of|in) (.+)$`), model.IntentRelationQuery, model.TopicWeapons},
		{regexp.MustCompile(`what weapons? does (.+?) have$`), model.IntentRelationQuery, model.TopicWeapons},
		{regexp.MustCompile(`does (.+?) have (?:any )?weapons?$`), model.IntentRelationQuery, model.TopicWeapons},
		{regexp.MustCompile(`^(.+?) weapons?$`), model.IntentRelationQuery, model.TopicWeapons},
		{regexp.MustCompile(`(?:defenses|defences|defensive systems?|armou?r|shields?) (?:are |is )?(?:on|of|in) (.+)$`), model.IntentRelationQuery, model.TopicDefenses},
		{regexp.MustCompile(`what (?:defenses|defences|defensive systems?|armou?r|shields?) does (.+?) have$`), model.IntentRelationQuery, model.TopicDefenses},
		{regexp.MustCompile(`how is (.+?) (?:protected|armou?red|defended)$`), model.IntentRelationQuery, model.TopicDefenses},
		{regexp.MustCompile(`^(.+?) (?:defenses|defences|armou?r)$`), model.IntentRelationQuery, model.TopicDefenses},
		{regexp.MustCompile(`(?:features|capabilities|gadgets|specifications|specs) (?:are |is )?(?:on|of|in) (.+)$`), model.IntentRelationQuery, model.TopicFeatures},
		{regexp.MustCompile(`what (?:special )?(?:features|capabilities|gadgets) does (.+?) have$`), model.IntentRelationQuery, model.TopicFeatures},
		{regexp.MustCompile(`what can (.+?) do$`), model.IntentRelationQuery, model.TopicFeatures},
		{regexp.MustCompile(`^(.+?) (?:features|capabilities|specs)$`), model.IntentRelationQuery, model.TopicFeatures},

		// Graph relations
		{regexp.MustCompile(`who (?:are|is) (.+?) allies$`), model.IntentRelationQuery, model.TopicAllies},
		{regexp.MustCompile(`allies of (.+)$`), model.IntentRelationQuery, model.TopicAllies},
		{regexp.MustCompile(`^(.+?) allies$`), model.IntentRelationQuery, model.TopicAllies},
		{regexp.MustCompile(`who (?:are|is) (.+?) enemies$`), model.IntentRelationQuery, model.TopicEnemies},
		{regexp.MustCompile(`enemies of (.+)$`), model.IntentRelationQuery, model.TopicEnemies},
		{regexp.MustCompile(`who does (.+?) fight$`), model.IntentRelationQuery, model.TopicEnemies},
		{regexp.MustCompile(`what (?:group|team|organi[sz]ation) (?:is|does) (.+?) (?:in|belong to|part of)$`), model.IntentRelationQuery, model.TopicAffiliation},
		{regexp.MustCompile(`(?:is|what is) (.+?) (?:a )?member of(?: .+)?$`), model.IntentRelationQuery, model.TopicAffiliation},
		{regexp.MustCompile(`what teams? is (.+?) on$`), model.IntentRelationQuery, model.TopicAffiliation},
		{regexp.MustCompile(`(?:what|which) (?:episodes?|stories|comics?|films?|movies?) (?:does|do|is|did) (.+?) appear(?:ed)? in$`), model.IntentRelationQuery, model.TopicAppearances},
		{regexp.MustCompile(`where does (.+?) appear$`), model.IntentRelationQuery, model.TopicAppearances},
		{regexp.MustCompile(`appearances of (.+)$`), model.IntentRelationQuery, model.TopicAppearances},

		// Ownership, both directions
		{regexp.MustCompile(`who (?:drives?|drove|pilots?|operates?|owns?|rides?|flies|flew) (.+)$`), model.IntentOwnership, model.TopicNone},
		{regexp.MustCompile(`what (?:vehicles? )?(?:does|do|did) (.+?) (?:drive|pilot|operate|own|ride|fly|use)$`), model.IntentOwnership, model.TopicNone},

		// Generic lookups
		{regexp.MustCompile(`^(?:who|what) (?:is|are|was|were) (.+)$`), model.IntentDirectLookup, model.TopicNone},
		{regexp.MustCompile(`^tell me about (.+)$`), model.IntentDirectLookup, model.TopicNone},
		{regexp.MustCompile(`^(?:info|information) (?:about|on) (.+)$`), model.IntentDirectLookup, model.TopicNone},
		{regexp.MustCompile(`^describe (.+)$`), model.IntentDirectLookup, model.TopicNone},
	}
}

// Classify evaluates the rule table against the normalized query text. If no
// rule matches, the intent is unparseable and the mention falls back to the
// query tokens with stop words removed, never to an unrelated search.
func (c *Classifier) Classify(query *model.Query) Classification {
	text := normalize.Text(query)

	for _, r := range c.rules {
		groups := r.pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}

		var mentions []string
		for _, group := range groups[1:] {
			mention := normalize.CleanMention(group)
			if mention != "" {
				mentions = append(mentions, mention)
			}
		}
		if len(mentions) == 0 {
			continue
		}

		return Classification{
			Intent:   r.intent,
			Topic:    r.topic,
			Mentions: mentions,
		}
	}

	var mentions []string
	if mention := strings.Join(normalize.StripStopWords(query.Tokens), " "); mention != "" {
		mentions = append(mentions, mention)
	}

	return Classification{
		Intent:   model.IntentUnparseable,
		Topic:    model.TopicNone,
		Mentions: mentions,
	}
}

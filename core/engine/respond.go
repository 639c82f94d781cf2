package engine

import (
	"fmt"
	"strings"

	"github.com/gothamlabs/oracle/core/normalize"
	"github.com/gothamlabs/oracle/model"
)

// topicLabels map relation topics to the noun used in answer and error text.
var topicLabels = map[model.RelationTopic]string{
	model.TopicWeapons:     "weapons",
	model.TopicDefenses:    "defenses",
	model.TopicFeatures:    "special features",
	model.TopicAllies:      "allies",
	model.TopicEnemies:     "enemies",
	model.TopicAffiliation: "affiliations",
	model.TopicAppearances: "appearances",
}

func topicLabel(topic model.RelationTopic) string {
	if label, ok := topicLabels[topic]; ok {
		return label
	}
	return "details"
}

// entityResponse answers a direct lookup with the entity's description.
func entityResponse(entity *model.Entity, confidence float64, intent model.Intent) *model.Response {
	description := normalize.Sanitize(entity.Description)
	if description == "" {
		description = fmt.Sprintf("%s is listed in the catalog, but no description is recorded.", entity.Name)
	}

	return &model.Response{
		Text:            description,
		Confidence:      confidence,
		Intent:          intent,
		SourceEntityIDs: []string{entity.ID.String()},
	}
}

// listResponse answers a relation query with a named list.
func listResponse(entity *model.Entity, topic model.RelationTopic, items []string, confidence float64) *model.Response {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		cleaned = append(cleaned, normalize.Sanitize(item))
	}

	return &model.Response{
		Text:            fmt.Sprintf("%s of %s: %s.", capitalize(topicLabel(topic)), entity.Name, strings.Join(cleaned, ", ")),
		Confidence:      confidence,
		Intent:          model.IntentRelationQuery,
		SourceEntityIDs: []string{entity.ID.String()},
	}
}

// attributeAbsentResponse reports that an entity has no recorded value for a
// topic, without guessing.
func attributeAbsentResponse(entity *model.Entity, topic model.RelationTopic, confidence float64) *model.Response {
	return &model.Response{
		Text:            fmt.Sprintf("The catalog has no %s recorded for %s.", topicLabel(topic), entity.Name),
		Confidence:      confidence,
		Intent:          model.IntentRelationQuery,
		SourceEntityIDs: []string{entity.ID.String()},
		ErrorKind:       model.ErrorAttributeAbsent,
	}
}

// noMatchResponse asks the user to rephrase when a mention matched nothing.
func noMatchResponse(mention string, intent model.Intent) *model.Response {
	return &model.Response{
		Text:       fmt.Sprintf("I couldn't find anything matching \"%s\" in the catalog. Could you rephrase, or give the full name?", mention),
		Intent:     intent,
		Confidence: 0,
		ErrorKind:  model.ErrorNoMatchFound,
	}
}

// outOfScopeResponse politely declines a question about another universe.
func outOfScopeResponse(excluded string) *model.Response {
	return &model.Response{
		Text:       fmt.Sprintf("%s is outside what I cover. I only know about Gotham and its inhabitants.", capitalize(excluded)),
		Intent:     model.IntentOutOfScope,
		Confidence: 1.0,
		ErrorKind:  model.ErrorOutOfScope,
	}
}

// ambiguousReferenceResponse asks what a pronoun refers to when there is no
// focus entity yet.
func ambiguousReferenceResponse() *model.Response {
	return &model.Response{
		Text:       "I'm not sure what you're referring to. Which character, vehicle or place do you mean?",
		Intent:     model.IntentUnparseable,
		Confidence: 0,
		ErrorKind:  model.ErrorAmbiguousReference,
	}
}

// clarificationResponse handles input with no actionable content.
func clarificationResponse() *model.Response {
	return &model.Response{
		Text:       "Ask me about a character, vehicle or place from Gotham. For example: \"Who is the Joker?\"",
		Intent:     model.IntentUnparseable,
		Confidence: 0,
	}
}

// menuResponse renders a pending disambiguation menu as a numbered list.
func menuResponse(mention string, menu *model.PendingMenu) *model.Response {
	var b strings.Builder
	fmt.Fprintf(&b, "I found several matches for \"%s\". Which one do you mean?\n", mention)
	for i, candidate := range menu.Candidates {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, candidate.Entity.Name, candidate.Entity.Type)
		if summary := shortSummary(candidate.Entity.Description); summary != "" {
			fmt.Fprintf(&b, " - %s", summary)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Reply with a number from 1 to %d.", len(menu.Candidates))

	return &model.Response{
		Text:           b.String(),
		Intent:         menu.Intent,
		Confidence:     0,
		PendingChoices: true,
	}
}

// menuBoundsResponse restates the valid range after an out-of-range pick.
func menuBoundsResponse(menu *model.PendingMenu) *model.Response {
	return &model.Response{
		Text:           fmt.Sprintf("That's not one of the options. Reply with a number from 1 to %d.", len(menu.Candidates)),
		Intent:         menu.Intent,
		Confidence:     0,
		PendingChoices: true,
		ErrorKind:      model.ErrorMenuBounds,
	}
}

// gatewayResponse apologizes when the catalog is unreachable.
func gatewayResponse(intent model.Intent) *model.Response {
	return &model.Response{
		Text:       "Sorry, the catalog is unavailable right now. Please try again in a moment.",
		Intent:     intent,
		Confidence: 0,
		ErrorKind:  model.ErrorGatewayUnavailable,
	}
}

// shortSummary returns the first sentence of a description, truncated for
// menu display.
func shortSummary(description string) string {
	description = normalize.Sanitize(description)
	if idx := strings.Index(description, ". "); idx > 0 {
		description = description[:idx+1]
	}

	const maxLen = 80
	runes := []rune(description)
	if len(runes) > maxLen {
		description = string(runes[:maxLen-3]) + "..."
	}
	return description
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package model

// Intent is the closed set of query intents.
type Intent string

const (
	IntentDirectLookup  Intent = "direct_lookup"
	IntentRelationQuery Intent = "relation_query"
	IntentOwnership     Intent = "ownership"
	IntentComparison    Intent = "comparison"
	IntentOutOfScope    Intent = "out_of_scope"
	IntentUnparseable   Intent = "unparseable"
)

// RelationTopic is the sub-kind carried by a relation query.
type RelationTopic string

const (
	TopicWeapons     RelationTopic = "weapons"
	TopicDefenses    RelationTopic = "defenses"
	TopicFeatures    RelationTopic = "features"
	TopicAllies      RelationTopic = "allies"
	TopicEnemies     RelationTopic = "enemies"
	TopicAffiliation RelationTopic = "affiliation"
	TopicAppearances RelationTopic = "appearances"
	TopicNone        RelationTopic = ""
)

// ErrorKind classifies conversational failure modes. All kinds except
// ErrorGatewayUnavailable are expected and answered with a conversational
// response rather than a hard failure.
type ErrorKind string

const (
	ErrorNone               ErrorKind = ""
	ErrorNoMatchFound       ErrorKind = "no_match_found"
	ErrorOutOfScope         ErrorKind = "out_of_scope"
	ErrorAmbiguousReference ErrorKind = "ambiguous_reference"
	ErrorMenuBounds         ErrorKind = "menu_bounds"
	ErrorAttributeAbsent    ErrorKind = "attribute_absent"
	ErrorGatewayUnavailable ErrorKind = "gateway_unavailable"
)

// Response is the structured answer payload for one query.
type Response struct {
	Text            string    `json:"text"`
	Confidence      float64   `json:"confidence"`
	Intent          Intent    `json:"intent"`
	SourceEntityIDs []string  `json:"source_entity_ids,omitempty"`
	PendingChoices  bool      `json:"pending_choices"`
	ErrorKind       ErrorKind `json:"error_kind,omitempty"`
}

// MatchCandidate represents one scored entity match. Ephemeral, created per
// query, never persisted.
type MatchCandidate struct {
	Entity  *Entity `json:"entity"`
	Score   float64 `json:"score"`
	Matched string  `json:"matched"` // Which name or alias matched
}

// Query represents one user utterance after normalization.
type Query struct {
	Raw      string   `json:"raw"`
	Tokens   []string `json:"tokens"`
	Mentions []string `json:"mentions,omitempty"`
	Intent   Intent   `json:"intent,omitempty"`
}

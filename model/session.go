package model

import "time"

// Turn represents one completed query/answer exchange in a session.
type Turn struct {
	Query    string    `json:"query"`
	EntityID string    `json:"entity_id,omitempty"`
	Intent   Intent    `json:"intent"`
	At       time.Time `json:"at"`
}

// PendingMenu is an active numbered list of disambiguation candidates awaiting
// a numeric reply. It also captures the intent and topic classified at menu
// creation time, so a later numeric selection answers the original question.
// Resolving a menu never re-queries the catalog.
type PendingMenu struct {
	Candidates []MatchCandidate `json:"candidates"`
	Intent     Intent           `json:"intent"`
	Topic      RelationTopic    `json:"topic"`
	CreatedAt  time.Time        `json:"created_at"`
}

// SessionState represents per-conversation-thread state. At most one
// PendingMenu is active at a time; a new ambiguous query replaces it.
type SessionState struct {
	ID         string       `json:"id"`
	History    []Turn       `json:"history,omitempty"`
	Focus      *Entity      `json:"focus,omitempty"`
	Menu       *PendingMenu `json:"menu,omitempty"`
	LastActive time.Time    `json:"last_active"`
	CreatedAt  time.Time    `json:"created_at"`
}

// RecordTurn appends a turn to the session history, bounded to window entries.
func (s *SessionState) RecordTurn(turn Turn, window int) {
	s.History = append(s.History, turn)
	if window > 0 && len(s.History) > window {
		s.History = s.History[len(s.History)-window:]
	}
}

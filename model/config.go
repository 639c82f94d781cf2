package model

import "time"

// EngineConfig represents the tuning parameters of the resolution engine.
type EngineConfig struct {
	// Fuzzy matching parameters
	FuzzyFloor       float64 `json:"fuzzy_floor"`        // Minimum score to keep a candidate
	AutoAcceptScore  float64 `json:"auto_accept_score"`  // Top score required to skip disambiguation
	AutoAcceptMargin float64 `json:"auto_accept_margin"` // Required lead over the second candidate
	EditWeight       float64 `json:"edit_weight"`        // Weight for edit-distance similarity
	OverlapWeight    float64 `json:"overlap_weight"`     // Weight for token overlap

	// PrimaryBoost is the additive bonus for primary entities, per type.
	PrimaryBoost map[EntityType]float64 `json:"primary_boost,omitempty"`
	// ShortNameBoost is added for primary entities with single-token names.
	ShortNameBoost float64 `json:"short_name_boost"`

	// Scope guard parameters
	ScopeThreshold float64 `json:"scope_threshold"` // Fuzzy threshold for exclusion matches

	// Disambiguation parameters
	MenuSize int `json:"menu_size"` // Maximum number of menu choices

	// Session parameters
	SessionTTL    time.Duration `json:"session_ttl"`
	HistoryWindow int           `json:"history_window"` // Recent turns kept per session
}

// DefaultEngineConfig returns a sensible default configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		FuzzyFloor:       0.55,
		AutoAcceptScore:  0.90,
		AutoAcceptMargin: 0.10,
		EditWeight:       0.6,
		OverlapWeight:    0.4,
		PrimaryBoost: map[EntityType]float64{
			EntityTypePerson:  0.2,
			EntityTypeVehicle: 0.15,
			EntityTypePlace:   0.15,
		},
		ShortNameBoost: 0.05,
		ScopeThreshold: 0.85,
		MenuSize:       5,
		SessionTTL:     30 * time.Minute,
		HistoryWindow:  5,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// RelationKind represents the type of relationship between entities.
type RelationKind string

const (
	RelationKindOperates  RelationKind = "operates"
	RelationKindMemberOf  RelationKind = "member_of"
	RelationKindAppearsIn RelationKind = "appears_in"
	RelationKindAllyOf    RelationKind = "ally_of"
	RelationKindEnemyOf   RelationKind = "enemy_of"
)

// RolePrimary marks the main operator on an operates edge.
const RolePrimary = "primary"

// RelationEdge represents a directed, typed relationship between two entities,
// or between an entity and a free-text value when the target is not a catalog
// item itself. Read-only from the engine's perspective.
type RelationEdge struct {
	ID       uuid.UUID  `json:"id"`
	SourceID uuid.UUID  `json:"source_id"`
	TargetID *uuid.UUID `json:"target_id,omitempty"`
	// TargetName carries the display name of the target, also for edges
	// whose target is a free-text value without a catalog id.
	TargetName string       `json:"target_name"`
	Kind       RelationKind `json:"kind"`
	Role       string       `json:"role,omitempty"`
	Metadata   Metadata     `json:"metadata,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

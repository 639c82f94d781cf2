package model

import (
	"time"

	"github.com/google/uuid"
)

// EntityType is the closed set of catalog item categories.
type EntityType string

const (
	EntityTypePerson    EntityType = "person"
	EntityTypeVehicle   EntityType = "vehicle"
	EntityTypePlace     EntityType = "place"
	EntityTypeNarrative EntityType = "narrative"
	EntityTypeGroup     EntityType = "group"
)

// EntityTypes lists all valid entity types.
var EntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeVehicle,
	EntityTypePlace,
	EntityTypeNarrative,
	EntityTypeGroup,
}

// Entity represents one catalog item (person, vehicle, place, narrative or group).
// Entities are read-only from the engine's perspective.
type Entity struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Type        EntityType `json:"entity_type"`
	Aliases     []string   `json:"aliases,omitempty"`
	Description string     `json:"description,omitempty"`
	// Primary marks protagonists and flagship vehicles. Primary entities
	// receive a small additive match bonus so that among near-tied scores
	// well-known entities outrank obscure ones.
	Primary    bool      `json:"primary"`
	Attributes Metadata  `json:"attributes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttributeList reads a string list attribute (e.g. "weapons") from the
// entity's attribute bag. Returns nil if the key is absent or not a list.
func (e *Entity) AttributeList(key string) []string {
	raw, ok := e.Attributes[key]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return items
	}
	return nil
}

// AttributeString reads a string attribute (e.g. "alignment") from the
// entity's attribute bag. Returns "" if the key is absent or not a string.
func (e *Entity) AttributeString(key string) string {
	if s, ok := e.Attributes[key].(string); ok {
		return s
	}
	return ""
}

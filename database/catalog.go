package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gothamlabs/oracle/helper"
	"github.com/gothamlabs/oracle/model"
)

// scanLimit bounds a full catalog scan. The catalog is a closed domain of a
// few hundred entities, so this is never reached in practice.
const scanLimit = 10000

// Catalog is the read-only gateway the resolution engine consumes. It adapts
// the entity and edge handlers to lookup-by-id, bulk-scan-by-type and
// edges-for operations.
type Catalog struct {
	entities *EntitiesDBHandler
	edges    *EdgesDBHandler
}

// NewCatalog creates a catalog gateway over the given handlers.
func NewCatalog(entities *EntitiesDBHandler, edges *EdgesDBHandler) (*Catalog, error) {
	if entities == nil || edges == nil {
		return nil, helper.NewError("catalog validation", fmt.Errorf("entities and edges handlers must not be nil"))
	}

	return &Catalog{
		entities: entities,
		edges:    edges,
	}, nil
}

// LookupByID retrieves one entity by id.
func (c *Catalog) LookupByID(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	entity, err := c.entities.SelectEntity(id)
	if err != nil {
		return nil, helper.NewError("lookup entity", err)
	}
	return entity, nil
}

// ScanCandidates returns all entities, optionally filtered by type.
func (c *Catalog) ScanCandidates(ctx context.Context, typeFilter *model.EntityType) ([]*model.Entity, error) {
	entities, err := c.entities.SelectEntitiesByType(typeFilter, scanLimit)
	if err != nil {
		return nil, helper.NewError("scan candidates", err)
	}
	return entities, nil
}

// EdgesFor returns the relation edges of the given kind attached to an
// entity, in both directions.
func (c *Catalog) EdgesFor(ctx context.Context, entityID uuid.UUID, kind model.RelationKind) ([]*model.RelationEdge, error) {
	outgoing, err := c.edges.SelectEdgesFromEntity(entityID, &kind)
	if err != nil {
		return nil, helper.NewError("select outgoing edges", err)
	}

	incoming, err := c.edges.SelectEdgesToEntity(entityID, &kind)
	if err != nil {
		return nil, helper.NewError("select incoming edges", err)
	}

	return append(outgoing, incoming...), nil
}

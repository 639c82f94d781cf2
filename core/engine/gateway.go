package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gothamlabs/oracle/helper"
	"github.com/gothamlabs/oracle/model"
)

// Gateway is the read-only catalog interface the engine consumes. The
// catalog is immutable for the lifetime of a query and may be queried
// concurrently without coordination.
type Gateway interface {
	LookupByID(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	ScanCandidates(ctx context.Context, typeFilter *model.EntityType) ([]*model.Entity, error)
	EdgesFor(ctx context.Context, entityID uuid.UUID, kind model.RelationKind) ([]*model.RelationEdge, error)
}

// retryGateway retries each failed lookup once immediately. A second failure
// is surfaced to the caller as a service-level condition.
type retryGateway struct {
	inner Gateway
}

// WithRetry wraps a gateway with retry-once semantics.
func WithRetry(gateway Gateway) Gateway {
	return &retryGateway{inner: gateway}
}

func (g *retryGateway) LookupByID(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	entity, err := g.inner.LookupByID(ctx, id)
	if err != nil {
		entity, err = g.inner.LookupByID(ctx, id)
	}
	return entity, err
}

func (g *retryGateway) ScanCandidates(ctx context.Context, typeFilter *model.EntityType) ([]*model.Entity, error) {
	entities, err := g.inner.ScanCandidates(ctx, typeFilter)
	if err != nil {
		entities, err = g.inner.ScanCandidates(ctx, typeFilter)
	}
	return entities, err
}

func (g *retryGateway) EdgesFor(ctx context.Context, entityID uuid.UUID, kind model.RelationKind) ([]*model.RelationEdge, error) {
	edges, err := g.inner.EdgesFor(ctx, entityID, kind)
	if err != nil {
		edges, err = g.inner.EdgesFor(ctx, entityID, kind)
	}
	return edges, err
}

// StaticGateway serves a fixed in-memory catalog. Used in tests and demos
// where no database is available.
type StaticGateway struct {
	entities []*model.Entity
	edges    []*model.RelationEdge
}

// NewStaticGateway creates a gateway over the given entities and edges.
// Entities without an id are assigned one.
func NewStaticGateway(entities []*model.Entity, edges []*model.RelationEdge) *StaticGateway {
	for _, entity := range entities {
		if entity.ID == uuid.Nil {
			entity.ID = uuid.New()
		}
	}
	return &StaticGateway{entities: entities, edges: edges}
}

// LookupByID retrieves one entity by id.
func (g *StaticGateway) LookupByID(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	for _, entity := range g.entities {
		if entity.ID == id {
			return entity, nil
		}
	}
	return nil, helper.NewError("lookup entity", fmt.Errorf("entity %s not found", id))
}

// ScanCandidates returns all entities, optionally filtered by type.
func (g *StaticGateway) ScanCandidates(ctx context.Context, typeFilter *model.EntityType) ([]*model.Entity, error) {
	if typeFilter == nil {
		return g.entities, nil
	}

	var filtered []*model.Entity
	for _, entity := range g.entities {
		if entity.Type == *typeFilter {
			filtered = append(filtered, entity)
		}
	}
	return filtered, nil
}

// EdgesFor returns the edges of the given kind attached to an entity, in
// both directions.
func (g *StaticGateway) EdgesFor(ctx context.Context, entityID uuid.UUID, kind model.RelationKind) ([]*model.RelationEdge, error) {
	var matched []*model.RelationEdge
	for _, edge := range g.edges {
		if edge.Kind != kind {
			continue
		}
		if edge.SourceID == entityID || (edge.TargetID != nil && *edge.TargetID == entityID) {
			matched = append(matched, edge)
		}
	}
	return matched, nil
}

// FindByName returns the first entity whose name matches, for test setup.
func (g *StaticGateway) FindByName(name string) *model.Entity {
	for _, entity := range g.entities {
		if strings.EqualFold(entity.Name, name) {
			return entity
		}
	}
	return nil
}

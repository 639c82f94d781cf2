package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gothamlabs/oracle/helper"
	"github.com/gothamlabs/oracle/model"
	loadSql "github.com/gothamlabs/oracle/sql"
)

// EdgesDBHandlerFunctions defines the interface for Edges database operations.
type EdgesDBHandlerFunctions interface {
	InsertEdge(edge *model.RelationEdge) error
	SelectEdge(id uuid.UUID) (*model.RelationEdge, error)
	SelectEdgesFromEntity(entityID uuid.UUID, kind *model.RelationKind) ([]*model.RelationEdge, error)
	SelectEdgesToEntity(entityID uuid.UUID, kind *model.RelationKind) ([]*model.RelationEdge, error)
	DeleteEdge(id uuid.UUID) error
}

// EdgesDBHandler handles edge-related database operations
type EdgesDBHandler struct {
	db *helper.Database
}

// NewEdgesDBHandler creates a new edges database handler.
// It initializes the database connection and loads edge-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEdgesDBHandler(db *helper.Database, force bool) (*EdgesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	edgesDbHandler := &EdgesDBHandler{
		db: db,
	}

	err := loadSql.LoadEdgesSql(edgesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load edges sql", err)
	}

	err = edgesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EdgesDBHandler")

	return edgesDbHandler, nil
}

// CreateTable creates the 'edges' table in the database.
// If the table already exists, it does not create it again.
// The edges table references entities, so the entities table must exist first.
func (h *EdgesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_edges();`)
	if err != nil {
		log.Panicf("error initializing edges table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table edges")

	return nil
}

// InsertEdge inserts a new edge (or updates if exists)
func (h *EdgesDBHandler) InsertEdge(edge *model.RelationEdge) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_edge($1, $2, $3, $4, $5, $6)`,
		edge.SourceID,
		edge.TargetID,
		edge.TargetName,
		edge.Kind,
		edge.Role,
		edge.Metadata,
	)

	err := scanEdge(row, edge)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectEdge retrieves an edge by ID
func (h *EdgesDBHandler) SelectEdge(id uuid.UUID) (*model.RelationEdge, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_edge($1)`,
		id,
	)

	edge := &model.RelationEdge{}

	err := scanEdge(row, edge)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return edge, nil
}

// SelectEdgesFromEntity retrieves edges originating from an entity
func (h *EdgesDBHandler) SelectEdgesFromEntity(entityID uuid.UUID, kind *model.RelationKind) ([]*model.RelationEdge, error) {
	rows, err := h.queryEdges(`SELECT * FROM select_edges_from_entity($1, $2)`, entityID, kind)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SelectEdgesToEntity retrieves edges targeting an entity
func (h *EdgesDBHandler) SelectEdgesToEntity(entityID uuid.UUID, kind *model.RelationKind) ([]*model.RelationEdge, error) {
	rows, err := h.queryEdges(`SELECT * FROM select_edges_to_entity($1, $2)`, entityID, kind)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteEdge deletes an edge by ID
func (h *EdgesDBHandler) DeleteEdge(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_edge($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func (h *EdgesDBHandler) queryEdges(query string, entityID uuid.UUID, kind *model.RelationKind) ([]*model.RelationEdge, error) {
	var rows *sql.Rows
	var err error

	if kind != nil {
		rows, err = h.db.Instance.Query(query, entityID, *kind)
	} else {
		rows, err = h.db.Instance.Query(query, entityID, nil)
	}

	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var edges []*model.RelationEdge
	for rows.Next() {
		edge := &model.RelationEdge{}
		err := scanEdge(rows, edge)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		edges = append(edges, edge)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return edges, nil
}

func scanEdge(row scanner, edge *model.RelationEdge) error {
	return row.Scan(
		&edge.ID,
		&edge.SourceID,
		&edge.TargetID,
		&edge.TargetName,
		&edge.Kind,
		&edge.Role,
		&edge.Metadata,
		&edge.CreatedAt,
	)
}

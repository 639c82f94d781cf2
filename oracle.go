// Package oracle answers conversational questions about a closed catalog of
// characters, vehicles, places and stories. It resolves free-text mentions to
// catalog entities, tracks conversational focus per session and answers
// relationship questions from a typed relation graph.
package oracle

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/gothamlabs/oracle/core/engine"
	"github.com/gothamlabs/oracle/database"
	"github.com/gothamlabs/oracle/helper"
	"github.com/gothamlabs/oracle/model"
	"github.com/gothamlabs/oracle/session"
	loadSql "github.com/gothamlabs/oracle/sql"
)

// Oracle provides a unified interface to the catalog handlers and the
// resolution engine.
type Oracle struct {
	DB       *helper.Database
	Entities *database.EntitiesDBHandler
	Edges    *database.EdgesDBHandler
	Catalog  *database.Catalog
	Engine   *engine.Engine
	Sessions *session.Store
	// Logging
	log *slog.Logger
}

// Stats summarizes the state of the service.
type Stats struct {
	Entities int64 `json:"entities"`
	Sessions int   `json:"sessions"`
}

// NewOracle creates an Oracle backed by a postgres catalog, with all handlers
// initialized.
func NewOracle(config *helper.DatabaseConfiguration, engineConfig model.EngineConfig) (*Oracle, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("oracle", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	edges, err := database.NewEdgesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create edges handler", err)
	}

	catalog, err := database.NewCatalog(entities, edges)
	if err != nil {
		return nil, helper.NewError("create catalog", err)
	}

	sessions := session.NewStore(engineConfig.SessionTTL, logger)

	return &Oracle{
		DB:       db,
		Entities: entities,
		Edges:    edges,
		Catalog:  catalog,
		Engine:   engine.NewEngine(catalog, sessions, engineConfig, logger),
		Sessions: sessions,
		log:      logger,
	}, nil
}

// NewOracleWithGateway creates an Oracle over an arbitrary catalog gateway,
// without a database. Used with an in-memory catalog in tests and demos.
func NewOracleWithGateway(gateway engine.Gateway, engineConfig model.EngineConfig) *Oracle {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	sessions := session.NewStore(engineConfig.SessionTTL, logger)

	return &Oracle{
		Engine:   engine.NewEngine(gateway, sessions, engineConfig, logger),
		Sessions: sessions,
		log:      logger,
	}
}

// HandleQuery answers one user utterance in the given session. Every failure
// mode maps to a conversational response; HandleQuery never returns nil.
func (o *Oracle) HandleQuery(ctx context.Context, sessionID string, text string) *model.Response {
	return o.Engine.HandleQuery(ctx, sessionID, text)
}

// NewSession returns a fresh session id. State is created lazily on the first
// query.
func (o *Oracle) NewSession() string {
	return uuid.New().String()
}

// ResetSession destroys the conversation state of a session. The next query
// starts a fresh conversation.
func (o *Oracle) ResetSession(sessionID string) {
	o.Sessions.Reset(sessionID)
}

// SessionStatus returns a snapshot of a session's state for inspection.
func (o *Oracle) SessionStatus(sessionID string) *model.SessionState {
	return o.Sessions.GetOrCreate(sessionID)
}

// Stats reports the catalog size and the number of live sessions. The entity
// count is zero when running without a database.
func (o *Oracle) Stats() (*Stats, error) {
	stats := &Stats{Sessions: o.Sessions.Len()}

	if o.Entities != nil {
		count, err := o.Entities.CountEntities()
		if err != nil {
			return nil, helper.NewError("count entities", err)
		}
		stats.Entities = count
	}

	return stats, nil
}

// Close closes the database connection.
func (o *Oracle) Close() error {
	if o.DB != nil && o.DB.Instance != nil {
		return o.DB.Instance.Close()
	}
	return nil
}

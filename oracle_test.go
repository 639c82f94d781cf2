package oracle

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gothamlabs/oracle/core/engine"
	"github.com/gothamlabs/oracle/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOracle() *Oracle {
	batman := &model.Entity{
		ID:          uuid.New(),
		Name:        "Batman",
		Type:        model.EntityTypePerson,
		Primary:     true,
		Aliases:     []string{"The Dark Knight", "Bruce Wayne"},
		Description: "Gotham's vigilante protector.",
	}
	batmobile := &model.Entity{
		ID:          uuid.New(),
		Name:        "Batmobile",
		Type:        model.EntityTypeVehicle,
		Primary:     true,
		Description: "Batman's armored pursuit car.",
		Attributes:  model.Metadata{"weapons": []string{"Machine guns"}},
	}
	edges := []*model.RelationEdge{
		{ID: uuid.New(), SourceID: batman.ID, TargetID: &batmobile.ID, TargetName: "Batmobile", Kind: model.RelationKindOperates, Role: model.RolePrimary},
	}

	gateway := engine.NewStaticGateway([]*model.Entity{batman, batmobile}, edges)
	return NewOracleWithGateway(gateway, model.DefaultEngineConfig())
}

func TestOracleHandleQuery(t *testing.T) {
	t.Run("Answers a lookup end to end", func(t *testing.T) {
		o := newTestOracle()

		response := o.HandleQuery(context.Background(), o.NewSession(), "who is batman")

		require.NotNil(t, response)
		assert.Equal(t, model.ErrorNone, response.ErrorKind)
		assert.Contains(t, response.Text, "vigilante")
	})

	t.Run("Carries focus across turns", func(t *testing.T) {
		o := newTestOracle()
		ctx := context.Background()
		sessionID := o.NewSession()

		o.HandleQuery(ctx, sessionID, "who is batman")
		response := o.HandleQuery(ctx, sessionID, "what does he drive")

		assert.Contains(t, response.Text, "Batmobile")
	})
}

func TestOracleSessions(t *testing.T) {
	t.Run("NewSession returns distinct ids", func(t *testing.T) {
		o := newTestOracle()

		assert.NotEqual(t, o.NewSession(), o.NewSession())
	})

	t.Run("Reset clears the conversation", func(t *testing.T) {
		o := newTestOracle()
		ctx := context.Background()
		sessionID := o.NewSession()

		o.HandleQuery(ctx, sessionID, "who is batman")
		o.ResetSession(sessionID)
		response := o.HandleQuery(ctx, sessionID, "what does he drive")

		assert.Equal(t, model.ErrorAmbiguousReference, response.ErrorKind, "Expected no focus after reset")
	})

	t.Run("SessionStatus reflects the last turn", func(t *testing.T) {
		o := newTestOracle()
		sessionID := o.NewSession()

		o.HandleQuery(context.Background(), sessionID, "who is batman")

		state := o.SessionStatus(sessionID)
		require.NotNil(t, state)
		assert.Len(t, state.History, 1)
		require.NotNil(t, state.Focus)
		assert.Equal(t, "Batman", state.Focus.Name)
	})
}

func TestOracleStats(t *testing.T) {
	t.Run("Counts live sessions without a database", func(t *testing.T) {
		o := newTestOracle()

		o.HandleQuery(context.Background(), "s1", "who is batman")

		stats, err := o.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Sessions)
		assert.Equal(t, int64(0), stats.Entities)
	})
}

func TestOracleClose(t *testing.T) {
	t.Run("Close without a database is a no-op", func(t *testing.T) {
		o := newTestOracle()

		assert.NoError(t, o.Close())
	})
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gothamlabs/oracle/model"
	"github.com/gothamlabs/oracle/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture builds a small in-memory catalog with the entity and relation
// shapes the pipeline has to handle: exact names, shared aliases, free-text
// edge targets and primary operator roles.
func newFixture() *StaticGateway {
	batman := &model.Entity{
		ID:          uuid.New(),
		Name:        "Batman",
		Type:        model.EntityTypePerson,
		Primary:     true,
		Aliases:     []string{"The Dark Knight", "Bruce Wayne", "Caped Crusader"},
		Description: "Gotham's vigilante protector and the city's most feared detective.",
	}
	joker := &model.Entity{
		ID:          uuid.New(),
		Name:        "Joker",
		Type:        model.EntityTypePerson,
		Primary:     true,
		Aliases:     []string{"The Clown Prince of Crime"},
		Description: "Batman's archenemy, a homicidal clown with a flair for theatrics.",
	}
	penguin := &model.Entity{
		ID:          uuid.New(),
		Name:        "Penguin",
		Type:        model.EntityTypePerson,
		Primary:     true,
		Aliases:     []string{"Oswald Cobblepot"},
		Description: "An umbrella-obsessed crime lord of Gotham's underworld.",
	}
	robin := &model.Entity{
		ID:          uuid.New(),
		Name:        "Robin",
		Type:        model.EntityTypePerson,
		Primary:     true,
		Description: "Batman's young partner.",
		Attributes:  model.Metadata{"weapons": []string{"Bo staff"}},
	}
	nightwing := &model.Entity{
		ID:          uuid.New(),
		Name:        "Nightwing",
		Type:        model.EntityTypePerson,
		Aliases:     []string{"Robin"},
		Description: "The first Robin, grown up and gone solo.",
	}
	catwoman := &model.Entity{
		ID:          uuid.New(),
		Name:        "Catwoman",
		Type:        model.EntityTypePerson,
		Primary:     true,
		Description: "A cat burglar with a complicated relationship to Batman.",
	}
	harley := &model.Entity{
		ID:          uuid.New(),
		Name:        "Harley Quinn",
		Type:        model.EntityTypePerson,
		Description: "The Joker's devoted accomplice.",
	}
	batmobile := &model.Entity{
		ID:          uuid.New(),
		Name:        "Batmobile",
		Type:        model.EntityTypeVehicle,
		Primary:     true,
		Description: "Batman's armored pursuit car.",
		Attributes: model.Metadata{
			"weapons":  []string{"Machine guns", "Rocket launcher"},
			"defenses": []string{"Armor plating", "Smoke screen"},
			"features": []string{"Afterburner", "Remote control"},
		},
	}
	batwing := &model.Entity{
		ID:          uuid.New(),
		Name:        "Batwing",
		Type:        model.EntityTypeVehicle,
		Primary:     true,
		Description: "Batman's personal combat aircraft.",
		Attributes: model.Metadata{
			"weapons":  []string{"Laser cannons"},
			"features": []string{"Vertical takeoff"},
		},
	}
	jokermobile := &model.Entity{
		ID:          uuid.New(),
		Name:        "Jokermobile",
		Type:        model.EntityTypeVehicle,
		Description: "The Joker's garishly painted getaway car.",
	}
	submarine := &model.Entity{
		ID:          uuid.New(),
		Name:        "Penguin Submarine",
		Type:        model.EntityTypeVehicle,
		Description: "The Penguin's bird-shaped submersible.",
	}

	entities := []*model.Entity{
		batman, joker, penguin, robin, nightwing, catwoman, harley,
		batmobile, batwing, jokermobile, submarine,
	}

	edges := []*model.RelationEdge{
		{ID: uuid.New(), SourceID: batman.ID, TargetID: &batmobile.ID, TargetName: "Batmobile", Kind: model.RelationKindOperates, Role: model.RolePrimary},
		{ID: uuid.New(), SourceID: robin.ID, TargetID: &batmobile.ID, TargetName: "Batmobile", Kind: model.RelationKindOperates},
		{ID: uuid.New(), SourceID: batman.ID, TargetID: &batwing.ID, TargetName: "Batwing", Kind: model.RelationKindOperates, Role: model.RolePrimary},
		{ID: uuid.New(), SourceID: joker.ID, TargetID: &jokermobile.ID, TargetName: "Jokermobile", Kind: model.RelationKindOperates, Role: model.RolePrimary},
		{ID: uuid.New(), SourceID: penguin.ID, TargetID: &submarine.ID, TargetName: "Penguin Submarine", Kind: model.RelationKindOperates, Role: model.RolePrimary},
		{ID: uuid.New(), SourceID: penguin.ID, TargetName: "Duck Boat", Kind: model.RelationKindOperates},
		{ID: uuid.New(), SourceID: joker.ID, TargetID: &harley.ID, TargetName: "Harley Quinn", Kind: model.RelationKindAllyOf},
		{ID: uuid.New(), SourceID: penguin.ID, TargetID: &joker.ID, TargetName: "Joker", Kind: model.RelationKindAllyOf},
		{ID: uuid.New(), SourceID: joker.ID, TargetID: &batman.ID, TargetName: "Batman", Kind: model.RelationKindEnemyOf},
		{ID: uuid.New(), SourceID: robin.ID, TargetName: "Dynamic Duo", Kind: model.RelationKindMemberOf},
		{ID: uuid.New(), SourceID: catwoman.ID, TargetName: "The Cat and the Claw", Kind: model.RelationKindAppearsIn},
	}

	return NewStaticGateway(entities, edges)
}

func newTestEngine(gateway Gateway) (*Engine, *session.Store) {
	store := session.NewStore(time.Minute, discardLogger())
	return NewEngine(gateway, store, model.DefaultEngineConfig(), discardLogger()), store
}

func TestHandleQueryDirectLookup(t *testing.T) {
	t.Run("Exact name resolves with full confidence", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(context.Background(), "s1", "Who is the Joker?")

		require.NotNil(t, response)
		assert.Equal(t, model.IntentDirectLookup, response.Intent)
		assert.Equal(t, model.ErrorNone, response.ErrorKind)
		assert.Equal(t, 1.0, response.Confidence)
		assert.Contains(t, response.Text, "archenemy")
	})

	t.Run("Alias resolves to the canonical entity", func(t *testing.T) {
		gateway := newFixture()
		e, _ := newTestEngine(gateway)

		response := e.HandleQuery(context.Background(), "s1", "who is bruce wayne")

		require.NotEmpty(t, response.SourceEntityIDs)
		assert.Equal(t, gateway.FindByName("Batman").ID.String(), response.SourceEntityIDs[0])
	})

	t.Run("Single-character typo is auto-accepted", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(context.Background(), "s1", "who is the jocker")

		assert.Equal(t, model.ErrorNone, response.ErrorKind)
		assert.False(t, response.PendingChoices, "Expected a typo on a distinctive name to resolve without a menu")
		assert.GreaterOrEqual(t, response.Confidence, 0.9)
		assert.Contains(t, response.Text, "archenemy")
	})

	t.Run("Gibberish yields no match", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(context.Background(), "s1", "who is zxqvnplrt")

		assert.Equal(t, model.ErrorNoMatchFound, response.ErrorKind)
		assert.Empty(t, response.SourceEntityIDs)
	})

	t.Run("Empty input asks for clarification", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(context.Background(), "s1", "   ")

		assert.Equal(t, model.ErrorNone, response.ErrorKind)
		assert.Contains(t, response.Text, "Ask me about")
	})

	t.Run("Repeating a query yields an identical answer", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())
		ctx := context.Background()

		first := e.HandleQuery(ctx, "s1", "who is the joker")
		// The second run starts with the focus already set.
		second := e.HandleQuery(ctx, "s1", "who is the joker")

		assert.Equal(t, first.Text, second.Text, "Expected the same answer on repeat")
		assert.Equal(t, first.Confidence, second.Confidence)
	})

	t.Run("Confident resolution moves the focus", func(t *testing.T) {
		gateway := newFixture()
		e, store := newTestEngine(gateway)

		e.HandleQuery(context.Background(), "s1", "who is catwoman")

		state := store.GetOrCreate("s1")
		require.NotNil(t, state.Focus, "Expected focus after a confident resolution")
		assert.Equal(t, "Catwoman", state.Focus.Name)
	})
}

func TestHandleQueryScope(t *testing.T) {
	t.Run("Out-of-domain name is declined", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(context.Background(), "s1", "who is superman")

		assert.Equal(t, model.ErrorOutOfScope, response.ErrorKind)
		assert.Equal(t, model.IntentOutOfScope, response.Intent)
		assert.Contains(t, response.Text, "Superman")
	})

	t.Run("Comparison with a domain term passes the guard", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(context.Background(), "s1", "compare the batmobile to superman")

		assert.NotEqual(t, model.ErrorOutOfScope, response.ErrorKind)
		assert.Contains(t, response.Text, "Batmobile")
	})
}

func TestHandleQueryPronouns(t *testing.T) {
	t.Run("Pronoun resolves against the focus", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())
		ctx := context.Background()

		e.HandleQuery(ctx, "s1", "who is the joker")
		response := e.HandleQuery(ctx, "s1", "what does he drive")

		assert.Equal(t, model.IntentOwnership, response.Intent)
		assert.Contains(t, response.Text, "Jokermobile")
		assert.Equal(t, 1.0, response.Confidence, "Expected contextual resolution to carry full confidence")
	})

	t.Run("Pronoun without focus is ambiguous", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(context.Background(), "s1", "what does he drive")

		assert.Equal(t, model.ErrorAmbiguousReference, response.ErrorKind)
	})
}

func TestHandleQueryMenu(t *testing.T) {
	t.Run("Shared alias opens a menu", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(context.Background(), "s1", "who is robin")

		assert.True(t, response.PendingChoices, "Expected two exact matches to require disambiguation")
		assert.Contains(t, response.Text, "1. Robin")
		assert.Contains(t, response.Text, "2. Nightwing")
	})

	t.Run("Out-of-range pick keeps the menu active", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())
		ctx := context.Background()

		e.HandleQuery(ctx, "s1", "who is robin")
		response := e.HandleQuery(ctx, "s1", "7")

		assert.Equal(t, model.ErrorMenuBounds, response.ErrorKind)
		assert.True(t, response.PendingChoices, "Expected the menu to survive an out-of-range pick")

		// The menu is still answerable afterwards.
		response = e.HandleQuery(ctx, "s1", "1")
		assert.Equal(t, model.ErrorNone, response.ErrorKind)
	})

	t.Run("Negative pick is out of range", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())
		ctx := context.Background()

		e.HandleQuery(ctx, "s1", "who is robin")
		response := e.HandleQuery(ctx, "s1", "-2")

		assert.Equal(t, model.ErrorMenuBounds, response.ErrorKind, "Expected a signed number to not select an option")
		assert.True(t, response.PendingChoices, "Expected the menu to survive a negative pick")
	})

	t.Run("Selection answers the stored question", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())
		ctx := context.Background()

		response := e.HandleQuery(ctx, "s1", "robin weapons")
		require.True(t, response.PendingChoices)

		response = e.HandleQuery(ctx, "s1", "1")

		assert.Equal(t, model.IntentRelationQuery, response.Intent)
		assert.Contains(t, response.Text, "Bo staff", "Expected the selection to answer the original weapons question")
		assert.Equal(t, 1.0, response.Confidence)
	})

	t.Run("Selection moves the focus", func(t *testing.T) {
		e, store := newTestEngine(newFixture())
		ctx := context.Background()

		e.HandleQuery(ctx, "s1", "who is robin")
		e.HandleQuery(ctx, "s1", "2")

		state := store.GetOrCreate("s1")
		require.NotNil(t, state.Focus)
		assert.Equal(t, "Nightwing", state.Focus.Name)
	})

	t.Run("Non-numeric query abandons the menu", func(t *testing.T) {
		e, store := newTestEngine(newFixture())
		ctx := context.Background()

		e.HandleQuery(ctx, "s1", "who is robin")
		response := e.HandleQuery(ctx, "s1", "who is batman")

		assert.False(t, response.PendingChoices)
		assert.Contains(t, response.Text, "vigilante")
		assert.Nil(t, store.GetOrCreate("s1").Menu, "Expected the menu to be discarded")
	})

	t.Run("Bare number without a menu finds nothing", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(context.Background(), "s1", "5")

		assert.Equal(t, model.ErrorNoMatchFound, response.ErrorKind)
	})
}

func TestHandleQueryRelations(t *testing.T) {
	ctx := context.Background()

	t.Run("Weapons come from the attribute bag", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "what weapons are on the batmobile?")

		assert.Equal(t, model.IntentRelationQuery, response.Intent)
		assert.Contains(t, response.Text, "Machine guns")
		assert.Contains(t, response.Text, "Rocket launcher")
	})

	t.Run("Defenses", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "what defensive systems are on the batmobile")

		assert.Contains(t, response.Text, "Smoke screen")
	})

	t.Run("Missing attribute is reported, not guessed", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "what weapons does the joker have")

		assert.Equal(t, model.ErrorAttributeAbsent, response.ErrorKind)
		assert.Contains(t, response.Text, "no weapons recorded")
	})

	t.Run("Allies include both edge directions", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "who are joker's allies?")

		assert.Contains(t, response.Text, "Harley Quinn")
		assert.Contains(t, response.Text, "Penguin", "Expected the incoming alliance edge to count")
	})

	t.Run("Enemies", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "enemies of the joker")

		assert.Contains(t, response.Text, "Batman")
	})

	t.Run("Affiliation uses outgoing membership edges", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "what team is robin part of")

		// "robin" is ambiguous, select the primary Robin.
		require.True(t, response.PendingChoices)
		response = e.HandleQuery(ctx, "s1", "1")

		assert.Contains(t, response.Text, "Dynamic Duo")
	})

	t.Run("Appearances", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "which episodes does catwoman appear in")

		assert.Contains(t, response.Text, "The Cat and the Claw")
	})
}

func TestHandleQueryOwnership(t *testing.T) {
	ctx := context.Background()

	t.Run("Vehicle resolves to its operators, primary first", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "who drives the batmobile?")

		assert.Equal(t, model.IntentOwnership, response.Intent)
		assert.Contains(t, response.Text, "Batmobile is operated by Batman")
		assert.Contains(t, response.Text, "Robin")
	})

	t.Run("Person resolves to their vehicles, primary first", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "what does penguin drive")

		assert.Contains(t, response.Text, "Penguin operates the Penguin Submarine")
		assert.Contains(t, response.Text, "Duck Boat", "Expected free-text edge targets to be listed")
	})

	t.Run("Missing operator relation is reported", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "what does catwoman drive")

		assert.Equal(t, model.ErrorAttributeAbsent, response.ErrorKind)
	})
}

func TestHandleQueryComparison(t *testing.T) {
	ctx := context.Background()

	t.Run("Two vehicles compare side by side", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "compare the batmobile to the batwing")

		assert.Equal(t, model.IntentComparison, response.Intent)
		assert.Contains(t, response.Text, "Comparing Batmobile and Batwing")
		assert.Contains(t, response.Text, "Machine guns")
		assert.Contains(t, response.Text, "Laser cannons")
		assert.Len(t, response.SourceEntityIDs, 2)
	})

	t.Run("Unresolvable side degrades to one-sided answer", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())

		response := e.HandleQuery(ctx, "s1", "batmobile vs zxqvnplrt")

		assert.Contains(t, response.Text, "I can only speak for Batmobile")
	})
}

func TestHandleQuerySessionIsolation(t *testing.T) {
	t.Run("Focus does not leak across sessions", func(t *testing.T) {
		e, _ := newTestEngine(newFixture())
		ctx := context.Background()

		e.HandleQuery(ctx, "s1", "who is the joker")
		response := e.HandleQuery(ctx, "s2", "what does he drive")

		assert.Equal(t, model.ErrorAmbiguousReference, response.ErrorKind, "Expected the second session to have no focus")
	})
}

// flakyGateway fails a fixed number of calls before delegating.
type flakyGateway struct {
	inner    Gateway
	failures int
}

func (g *flakyGateway) fail() error {
	if g.failures > 0 {
		g.failures--
		return errors.New("connection refused")
	}
	return nil
}

func (g *flakyGateway) LookupByID(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	if err := g.fail(); err != nil {
		return nil, err
	}
	return g.inner.LookupByID(ctx, id)
}

func (g *flakyGateway) ScanCandidates(ctx context.Context, typeFilter *model.EntityType) ([]*model.Entity, error) {
	if err := g.fail(); err != nil {
		return nil, err
	}
	return g.inner.ScanCandidates(ctx, typeFilter)
}

func (g *flakyGateway) EdgesFor(ctx context.Context, entityID uuid.UUID, kind model.RelationKind) ([]*model.RelationEdge, error) {
	if err := g.fail(); err != nil {
		return nil, err
	}
	return g.inner.EdgesFor(ctx, entityID, kind)
}

func TestHandleQueryGateway(t *testing.T) {
	t.Run("Single failure is retried transparently", func(t *testing.T) {
		e, _ := newTestEngine(&flakyGateway{inner: newFixture(), failures: 1})

		response := e.HandleQuery(context.Background(), "s1", "who is the joker")

		assert.Equal(t, model.ErrorNone, response.ErrorKind, "Expected one failure to be absorbed by the retry")
		assert.Contains(t, response.Text, "archenemy")
	})

	t.Run("Persistent failure surfaces as unavailable", func(t *testing.T) {
		e, _ := newTestEngine(&flakyGateway{inner: newFixture(), failures: 10})

		response := e.HandleQuery(context.Background(), "s1", "who is the joker")

		assert.Equal(t, model.ErrorGatewayUnavailable, response.ErrorKind)
		assert.Contains(t, response.Text, "unavailable")
	})
}

func TestHandleQueryHistory(t *testing.T) {
	t.Run("History is bounded to the configured window", func(t *testing.T) {
		e, store := newTestEngine(newFixture())
		ctx := context.Background()

		for i := 0; i < 7; i++ {
			e.HandleQuery(ctx, "s1", fmt.Sprintf("who is the joker %d", i))
		}

		state := store.GetOrCreate("s1")
		assert.Len(t, state.History, model.DefaultEngineConfig().HistoryWindow)
	})
}

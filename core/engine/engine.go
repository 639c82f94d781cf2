// Package engine runs the query pipeline: normalization, context resolution,
// intent classification, scope guarding, fuzzy matching, disambiguation,
// relationship resolution and response formatting. One query runs entirely
// inside its session's critical section, so concurrent requests on the same
// session cannot interleave focus or menu updates.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/gothamlabs/oracle/core/intent"
	"github.com/gothamlabs/oracle/core/match"
	"github.com/gothamlabs/oracle/core/normalize"
	"github.com/gothamlabs/oracle/model"
	"github.com/gothamlabs/oracle/session"
)

// Engine answers conversational queries against the entity catalog.
type Engine struct {
	gateway    Gateway
	sessions   *session.Store
	matcher    *match.Matcher
	guard      *match.Guard
	classifier *intent.Classifier
	config     model.EngineConfig
	log        *slog.Logger
}

// NewEngine wires the pipeline stages around a catalog gateway. The gateway
// is wrapped with retry-once semantics.
func NewEngine(gateway Gateway, sessions *session.Store, config model.EngineConfig, logger *slog.Logger) *Engine {
	return &Engine{
		gateway:    WithRetry(gateway),
		sessions:   sessions,
		matcher:    match.NewMatcher(config),
		guard:      match.NewGuard(config.ScopeThreshold),
		classifier: intent.NewClassifier(),
		config:     config,
		log:        logger,
	}
}

// HandleQuery answers one user utterance in the given session. Every failure
// mode maps to a conversational response; HandleQuery never returns nil.
func (e *Engine) HandleQuery(ctx context.Context, sessionID string, rawText string) *model.Response {
	state, release := e.sessions.Acquire(sessionID)
	defer release()

	query := normalize.Normalize(rawText)
	if len(query.Tokens) == 0 {
		return e.finish(state, query, clarificationResponse())
	}

	if state.Menu != nil {
		if pick, ok := bareNumber(rawText); ok {
			return e.finish(state, query, e.resolveMenuChoice(ctx, state, pick))
		}
		// Any non-numeric query abandons the menu.
		state.Menu = nil
	}

	cls := e.classifier.Classify(query)
	if len(cls.Mentions) == 0 {
		return e.finish(state, query, clarificationResponse())
	}

	if response := e.checkScope(query, cls); response != nil {
		return e.finish(state, query, response)
	}

	var response *model.Response
	if cls.Intent == model.IntentComparison && len(cls.Mentions) == 2 {
		response = e.handleComparison(ctx, state, cls)
	} else {
		response = e.handleSingle(ctx, state, cls)
	}
	return e.finish(state, query, response)
}

// checkScope rejects mentions naming entities outside the domain. A
// comparison that names a domain term on either side passes, so in-domain
// entities can be compared against outside ones.
func (e *Engine) checkScope(query *model.Query, cls intent.Classification) *model.Response {
	if cls.Intent == model.IntentComparison && e.guard.ContainsDomainTerm(normalize.Text(query)) {
		return nil
	}

	for _, mention := range cls.Mentions {
		if IsReferring(mention) {
			continue
		}
		if excluded, rejected := e.guard.Check(mention); rejected {
			e.log.Info("Rejected out-of-scope mention",
				slog.String("mention", mention),
				slog.String("matched", excluded))
			return outOfScopeResponse(excluded)
		}
	}
	return nil
}

// handleSingle resolves a one-mention query: referring expressions against
// the focus, everything else against the catalog.
func (e *Engine) handleSingle(ctx context.Context, state *model.SessionState, cls intent.Classification) *model.Response {
	mention := cls.Mentions[0]

	if IsReferring(mention) {
		if state.Focus == nil {
			return ambiguousReferenceResponse()
		}
		response, err := e.answer(ctx, state.Focus, cls.Intent, cls.Topic, 1.0)
		if err != nil {
			return e.failGateway(err, cls.Intent)
		}
		return response
	}

	candidates, err := e.rank(ctx, mention)
	if err != nil {
		return e.failGateway(err, cls.Intent)
	}
	if len(candidates) == 0 {
		return noMatchResponse(mention, cls.Intent)
	}

	if e.matcher.AutoAccept(candidates) || len(candidates) == 1 {
		top := candidates[0]
		if top.Score >= e.config.AutoAcceptScore {
			state.Focus = top.Entity
		}
		response, err := e.answer(ctx, top.Entity, cls.Intent, cls.Topic, top.Score)
		if err != nil {
			return e.failGateway(err, cls.Intent)
		}
		return response
	}

	return e.openMenu(state, mention, candidates, cls)
}

// handleComparison resolves both sides of a comparison to their best match.
// A side that resolves to nothing is reported instead of failing the whole
// comparison.
func (e *Engine) handleComparison(ctx context.Context, state *model.SessionState, cls intent.Classification) *model.Response {
	var entities []*model.Entity
	confidence := 1.0

	for _, mention := range cls.Mentions {
		if IsReferring(mention) {
			if state.Focus == nil {
				return ambiguousReferenceResponse()
			}
			entities = append(entities, state.Focus)
			continue
		}

		candidates, err := e.rank(ctx, mention)
		if err != nil {
			return e.failGateway(err, cls.Intent)
		}
		if len(candidates) == 0 {
			continue
		}
		entities = append(entities, candidates[0].Entity)
		if candidates[0].Score < confidence {
			confidence = candidates[0].Score
		}
	}

	switch len(entities) {
	case 2:
		return e.answerComparison(entities[0], entities[1], confidence)
	case 1:
		response := entityResponse(entities[0], confidence, model.IntentComparison)
		response.Text = "I can only speak for " + entities[0].Name + ". " + response.Text
		return response
	default:
		return noMatchResponse(cls.Mentions[0], cls.Intent)
	}
}

// answer dispatches a resolved entity to the handler for the query intent.
func (e *Engine) answer(ctx context.Context, entity *model.Entity, queryIntent model.Intent, topic model.RelationTopic, confidence float64) (*model.Response, error) {
	switch queryIntent {
	case model.IntentRelationQuery:
		return e.answerRelation(ctx, entity, topic, confidence)
	case model.IntentOwnership:
		return e.answerOwnership(ctx, entity, confidence)
	default:
		return entityResponse(entity, confidence, queryIntent), nil
	}
}

// rank scores the full candidate pool against a mention.
func (e *Engine) rank(ctx context.Context, mention string) ([]model.MatchCandidate, error) {
	pool, err := e.gateway.ScanCandidates(ctx, nil)
	if err != nil {
		return nil, err
	}
	return e.matcher.Rank(mention, pool), nil
}

// finish records the turn in the session history and returns the response.
func (e *Engine) finish(state *model.SessionState, query *model.Query, response *model.Response) *model.Response {
	turn := model.Turn{
		Query:  query.Raw,
		Intent: response.Intent,
		At:     time.Now(),
	}
	if len(response.SourceEntityIDs) > 0 && !response.PendingChoices {
		turn.EntityID = response.SourceEntityIDs[0]
	}
	state.RecordTurn(turn, e.config.HistoryWindow)
	return response
}

// failGateway logs a persistent catalog failure and apologizes to the user.
func (e *Engine) failGateway(err error, queryIntent model.Intent) *model.Response {
	e.log.Error("Catalog unavailable", slog.Any("error", err))
	return gatewayResponse(queryIntent)
}

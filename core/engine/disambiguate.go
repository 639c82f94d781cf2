package engine

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gothamlabs/oracle/core/intent"
	"github.com/gothamlabs/oracle/model"
)

// bareNumber reports whether the query is a single plain integer, a reply to
// a pending menu. It parses the raw text, not the token sequence, because
// normalization strips a leading sign and would turn "-2" into a valid pick.
func bareNumber(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// openMenu stores a pending menu on the session, replacing any previous one,
// and returns the numbered list to show the user. The classified intent and
// topic are captured so the eventual selection answers the original question.
func (e *Engine) openMenu(state *model.SessionState, mention string, candidates []model.MatchCandidate, cls intent.Classification) *model.Response {
	if len(candidates) > e.config.MenuSize {
		candidates = candidates[:e.config.MenuSize]
	}

	state.Menu = &model.PendingMenu{
		Candidates: candidates,
		Intent:     cls.Intent,
		Topic:      cls.Topic,
		CreatedAt:  time.Now(),
	}
	return menuResponse(mention, state.Menu)
}

// resolveMenuChoice handles a numeric reply to the active menu. An in-range
// pick closes the menu, moves the focus and answers the stored question from
// the stored candidates without re-querying the catalog. An out-of-range pick
// keeps the menu active.
func (e *Engine) resolveMenuChoice(ctx context.Context, state *model.SessionState, pick int) *model.Response {
	menu := state.Menu
	if pick < 1 || pick > len(menu.Candidates) {
		return menuBoundsResponse(menu)
	}

	chosen := menu.Candidates[pick-1]
	state.Menu = nil
	state.Focus = chosen.Entity

	// An explicit selection is an exact resolution.
	response, err := e.answer(ctx, chosen.Entity, menu.Intent, menu.Topic, 1.0)
	if err != nil {
		return e.failGateway(err, menu.Intent)
	}
	return response
}

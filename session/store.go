// Package session holds per-conversation state keyed by session id, with an
// explicit lifecycle: create on first contact, destroy on reset or idle
// expiry.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gothamlabs/oracle/model"
)

type entry struct {
	mu    sync.Mutex
	state *model.SessionState
}

// Store is a process-wide map from session id to conversation state.
// Different sessions are fully independent; requests on the same session are
// serialized through Acquire.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	logger   *slog.Logger
}

// NewStore creates a session store. Sessions idle longer than ttl are
// discarded lazily on next access; a ttl of zero disables expiry.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		sessions: map[string]*entry{},
		ttl:      ttl,
		logger:   logger,
	}
}

// Acquire returns the session state for id, creating it if absent or
// expired, and locks the session until the returned release function is
// called. The whole pipeline for one query runs inside this critical
// section so concurrent requests on the same session cannot race on focus
// or menu updates.
func (s *Store) Acquire(id string) (*model.SessionState, func()) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok && s.expired(e.state) {
		s.logger.Info("Session expired", slog.String("session_id", id))
		ok = false
	}
	if !ok {
		e = &entry{state: newState(id)}
		s.sessions[id] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	return e.state, func() {
		e.state.LastActive = time.Now()
		e.mu.Unlock()
	}
}

// GetOrCreate returns the current state for id without locking the session.
// Intended for read-only status inspection.
func (s *Store) GetOrCreate(id string) *model.SessionState {
	state, release := s.Acquire(id)
	defer release()

	copied := *state
	return &copied
}

// Save replaces the stored state for id, creating the session if absent. It
// takes the session lock, so a replacement waits for any in-flight query on
// the same session instead of interleaving with it.
func (s *Store) Save(id string, state *model.SessionState) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		// Never expose a nil state to a concurrent Acquire.
		e = &entry{state: newState(id)}
		s.sessions[id] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	state.LastActive = time.Now()
	e.state = state
	e.mu.Unlock()
}

// Reset destroys the session. The next access starts a fresh conversation.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Len returns the number of live sessions, not counting expired ones.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.sessions {
		if !s.expired(e.state) {
			count++
		}
	}
	return count
}

func (s *Store) expired(state *model.SessionState) bool {
	return s.ttl > 0 && time.Since(state.LastActive) > s.ttl
}

func newState(id string) *model.SessionState {
	now := time.Now()
	return &model.SessionState{
		ID:         id,
		CreatedAt:  now,
		LastActive: now,
	}
}

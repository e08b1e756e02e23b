package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds all live sessions in memory. Nothing survives a restart.
//
// The store-level mutex guards the map; each session carries its own lock so
// concurrent requests against the same session id append turns one at a time
// and never interleave or drop writes.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	sess *Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// GetOrCreate returns the session for id, creating it on first use. An empty
// id gets a fresh UUID. The returned id is the one the session is stored
// under.
func (s *Store) GetOrCreate(id string) string {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		now := time.Now()
		s.sessions[id] = &entry{sess: &Session{
			ID:           id,
			CreatedAt:    now,
			LastActivity: now,
			Turns:        []Turn{},
		}}
	}
	return id
}

// AppendTurn appends a turn to the session, creating the session if needed.
// Turns keep strict insertion order.
func (s *Store) AppendTurn(id, role, text string) {
	e := s.lookupOrCreate(id)

	e.mu.Lock()
	defer e.mu.Unlock()
	now := time.Now()
	e.sess.Turns = append(e.sess.Turns, Turn{Role: role, Text: text, Timestamp: now})
	e.sess.LastActivity = now
}

// Snapshot returns a copy of the session's turns, in insertion order.
// The second return is false when the session does not exist.
func (s *Store) Snapshot(id string) ([]Turn, bool) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	turns := make([]Turn, len(e.sess.Turns))
	copy(turns, e.sess.Turns)
	return turns, true
}

// Info returns a summary of the session.
func (s *Store) Info(id string) (Info, bool) {
	e, ok := s.lookup(id)
	if !ok {
		return Info{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	info := Info{
		ID:              e.sess.ID,
		CreatedAt:       e.sess.CreatedAt,
		LastActivity:    e.sess.LastActivity,
		TurnCount:       len(e.sess.Turns),
		DurationSeconds: e.sess.LastActivity.Sub(e.sess.CreatedAt).Seconds(),
	}
	for _, t := range e.sess.Turns {
		switch t.Role {
		case RoleUser:
			info.UserTurns++
		case RoleAssistant:
			info.AssistantTurns++
		}
	}
	return info, true
}

// List returns the ids of all live sessions.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// CleanupInactive removes sessions idle longer than maxIdle and returns how
// many were dropped.
func (s *Store) CleanupInactive(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		stale := e.sess.LastActivity.Before(cutoff)
		e.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	return e, ok
}

func (s *Store) lookupOrCreate(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		now := time.Now()
		e = &entry{sess: &Session{
			ID:           id,
			CreatedAt:    now,
			LastActivity: now,
			Turns:        []Turn{},
		}}
		s.sessions[id] = e
	}
	return e
}

package service

import (
	"sync"
	"time"

	"github.com/brikkle/chatbot/internal/domain"
	"github.com/google/uuid"
)

const (
	// DefaultSessionTTL is how long an idle session survives before eviction
	DefaultSessionTTL = 24 * time.Hour
	// DefaultHistoryLimit is the number of turns retained per session
	DefaultHistoryLimit = 5
)

// sessionState is the store-private mutable state of one session. Its mutex
// serializes history read-modify-write for concurrent requests on the same
// session; sessions never share a lock.
type sessionState struct {
	mu         sync.Mutex
	id         string
	createdAt  time.Time
	lastActive time.Time
	turns      []domain.Turn
}

// SessionStore owns all conversation sessions. The outer mutex only guards
// map membership; per-session mutation takes the session's own lock, so
// traffic on different sessions never contends.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState

	ttl          time.Duration
	historyLimit int

	now func() time.Time
}

// NewSessionStore creates a session store with the given TTL and per-session
// history retention limit.
func NewSessionStore(ttl time.Duration, historyLimit int) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &SessionStore{
		sessions:     make(map[string]*sessionState),
		ttl:          ttl,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// GetOrCreate resolves a session. An absent, unknown, or expired id silently
// starts a fresh session under a new UUID. Returns the resolved id and a
// copy of the retained history.
func (s *SessionStore) GetOrCreate(id string) (string, []domain.Turn) {
	if id != "" {
		if state := s.lookup(id); state != nil {
			state.mu.Lock()
			defer state.mu.Unlock()
			state.lastActive = s.now()
			return state.id, copyTurns(state.turns)
		}
	}

	now := s.now()
	state := &sessionState{
		id:         uuid.NewString(),
		createdAt:  now,
		lastActive: now,
	}

	s.mu.Lock()
	s.sessions[state.id] = state
	s.mu.Unlock()

	return state.id, nil
}

// lookup returns the live session for id, treating an expired session as
// absent (and dropping it).
func (s *SessionStore) lookup(id string) *sessionState {
	s.mu.RLock()
	state, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	if s.expired(state) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil
	}
	return state
}

// Append adds a turn to the session's history, dropping the oldest turns
// once the retention limit is exceeded.
func (s *SessionStore) Append(id string, role domain.Role, content string) error {
	state := s.lookup(id)
	if state == nil {
		return domain.ErrSessionNotFound
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	state.turns = append(state.turns, domain.Turn{
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC(),
	})
	if len(state.turns) > s.historyLimit {
		state.turns = state.turns[len(state.turns)-s.historyLimit:]
	}
	state.lastActive = s.now()
	return nil
}

// Sweep evicts sessions idle past the TTL and reports how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, state := range s.sessions {
		if s.expired(state) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) expired(state *sessionState) bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	return s.now().Sub(state.lastActive) > s.ttl
}

// SessionStats describes in-memory session storage.
type SessionStats struct {
	TotalSessions  int    `json:"total_sessions"`
	ActiveSessions int    `json:"active_sessions"`
	TotalMessages  int    `json:"total_messages"`
	HistoryLimit   int    `json:"max_messages_per_session"`
	StorageType    string `json:"storage_type"`
}

// Stats reports session-store statistics for the stats endpoint.
func (s *SessionStore) Stats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := SessionStats{
		TotalSessions: len(s.sessions),
		HistoryLimit:  s.historyLimit,
		StorageType:   "in_memory",
	}
	for _, state := range s.sessions {
		state.mu.Lock()
		stats.TotalMessages += len(state.turns)
		active := s.now().Sub(state.lastActive) <= s.ttl
		state.mu.Unlock()
		if active {
			stats.ActiveSessions++
		}
	}
	return stats
}

func copyTurns(turns []domain.Turn) []domain.Turn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}

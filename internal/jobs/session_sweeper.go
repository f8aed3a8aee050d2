package jobs

import (
	"context"
	"log"
)

// SweepableStore defines the session-store surface the sweeper needs
type SweepableStore interface {
	Sweep() int
}

// SessionSweeper evicts expired conversation sessions on each poll
type SessionSweeper struct {
	store SweepableStore
}

// NewSessionSweeper creates a new SessionSweeper instance
func NewSessionSweeper(store SweepableStore) *SessionSweeper {
	return &SessionSweeper{store: store}
}

// ProcessJobs runs one sweep over the session store
func (s *SessionSweeper) ProcessJobs(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if removed := s.store.Sweep(); removed > 0 {
		log.Printf("Session sweep evicted %d expired session(s)", removed)
	}
	return nil
}

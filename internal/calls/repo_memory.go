package calls

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo mirrors the Postgres repository's semantics, including the
// live-room uniqueness check, for tests. It is not intended for production use.
type MemoryRepo struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sessions: make(map[string]Session)}
}

func (r *MemoryRepo) Insert(_ context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sessions {
		if existing.RoomName == s.RoomName && existing.Status.Live() {
			return ErrCallInProgress
		}
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *MemoryRepo) Get(_ context.Context, id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) MarkActive(_ context.Context, id, calleeID string, at time.Time) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.CalleeID != calleeID || s.Status != StatusRinging {
		return Session{}, ErrNotFound
	}
	s.Status = StatusActive
	t := at
	s.AnsweredAt = &t
	r.sessions[id] = s
	return s, nil
}

func (r *MemoryRepo) MarkEnded(_ context.Context, id string, from, to Status, at time.Time) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.Status != from {
		return Session{}, ErrNotFound
	}
	s.Status = to
	t := at
	s.EndedAt = &t
	r.sessions[id] = s
	return s, nil
}

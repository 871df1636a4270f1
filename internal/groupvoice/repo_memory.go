package groupvoice

import (
	"context"
	"sync"
)

// MemoryLog is a simple in-memory append-only log useful for tests.
// It is not intended for production use.
type MemoryLog struct {
	mu     sync.Mutex
	events []ParticipantEvent
}

func NewMemoryLog() *MemoryLog { return &MemoryLog{} }

func (r *MemoryLog) Append(ctx context.Context, e ParticipantEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *MemoryLog) ListByChannel(ctx context.Context, channelID string, limit int) ([]ParticipantEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ParticipantEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].ChannelID == channelID {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

func (r *MemoryLog) Events() []ParticipantEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ParticipantEvent, len(r.events))
	copy(out, r.events)
	return out
}

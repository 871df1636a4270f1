package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count      int
	windowStart time.Time
}

// Memory is an in-process fixed-window counter arena.
//
// Entries older than their window are replaced lazily on access; Sweep
// removes stale entries in bulk and should be driven by a ticker goroutine
// owned by the process root. Losing state (restart, sweep) only ever relaxes
// a limit, never violates one retroactively.
type Memory struct {
	mu      sync.Mutex
	entries map[string]window
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]window),
		clock:   time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string, maxRequests int, windowDur time.Duration) (Decision, error) {
	if key == "" || maxRequests <= 0 || windowDur <= 0 {
		return Decision{}, ErrInvalidArgument
	}

	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.Sub(e.windowStart) >= windowDur {
		// First request in a fresh window seeds the counter.
		m.entries[key] = window{count: 1, windowStart: now}
		return Decision{Allowed: true}, nil
	}

	e.count++
	m.entries[key] = e
	if e.count > maxRequests {
		remaining := windowDur - now.Sub(e.windowStart)
		return Decision{Allowed: false, RetryAfter: remaining}, nil
	}
	return Decision{Allowed: true}, nil
}

// Sweep drops every entry whose window has fully elapsed.
func (m *Memory) Sweep(windowDur time.Duration) int {
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, e := range m.entries {
		if now.Sub(e.windowStart) >= windowDur {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked windows (for tests and gauges).
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

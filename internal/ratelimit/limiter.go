package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidArgument = errors.New("ratelimit: invalid argument")

// Decision is the outcome of an admission check.
// RetryAfter is only meaningful when Allowed is false.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter is the admission gate consulted before any state mutation.
// Keys are "<endpoint>:<caller identity or ip>". Implementations are
// best-effort throttles against accidental retry storms, not a security
// boundary against distributed abuse.
type Limiter interface {
	Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (Decision, error)
}

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resubscribeBaseDelay = 250 * time.Millisecond
	resubscribeMaxDelay  = 5 * time.Second
)

// Subscriber is the long-lived consumer side of the bus: one subscription
// per connected client, blocking on the user's channel and transparently
// resubscribing on transport drop. Delivery is at-least-once.
type Subscriber struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewSubscriber(rdb *redis.Client, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{rdb: rdb, logger: logger}
}

// Run delivers the user's incoming-call events to fn until ctx is done.
// Transport errors trigger a resubscribe with backoff; already-delivered
// events are never tracked here, clients dedupe on session_id + status.
func (s *Subscriber) Run(ctx context.Context, userID string, fn func(IncomingCall)) error {
	delay := resubscribeBaseDelay

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sub := s.rdb.Subscribe(ctx, ChannelFor(userID))
		delivered := s.consume(ctx, sub, fn)
		_ = sub.Close()

		if err := ctx.Err(); err != nil {
			return err
		}

		if delivered {
			delay = resubscribeBaseDelay
		} else {
			delay *= 2
			if delay > resubscribeMaxDelay {
				delay = resubscribeMaxDelay
			}
		}

		s.logger.Debug("resubscribing to call events", "user_id", userID, "delay", delay.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// consume drains the subscription until it breaks, reporting whether at
// least one event was delivered (used to reset backoff).
func (s *Subscriber) consume(ctx context.Context, sub *redis.PubSub, fn func(IncomingCall)) bool {
	delivered := false
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return delivered
		case msg, ok := <-ch:
			if !ok {
				return delivered
			}
			var ev IncomingCall
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Warn("bad call event payload", "err", err)
				continue
			}
			fn(ev)
			delivered = true
		}
	}
}

package notify

import (
	"context"
	"encoding/json"

	"voice-platform/internal/calls"
	"voice-platform/internal/social"
	"voice-platform/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Publisher is the slice of the redis client the dispatcher needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Dispatcher bridges session-store inserts to the event bus so the callee's
// client is pushed an incoming call without polling.
//
// Everything here is best-effort: a publish failure is logged and dropped.
// An unreachable bus means the call rings out to missed, it never fails the
// caller's request.
type Dispatcher struct {
	pub      Publisher
	profiles social.ProfileStore
}

func NewDispatcher(pub Publisher, profiles social.ProfileStore) *Dispatcher {
	return &Dispatcher{pub: pub, profiles: profiles}
}

func (d *Dispatcher) CallRinging(ctx context.Context, s calls.Session) {
	log := logger.From(ctx)
	ev := IncomingCall{
		SessionID: s.ID,
		CallerID:  s.CallerID,
		RoomName:  s.RoomName,
		CallType:  string(s.CallType),
		Status:    string(s.Status),
	}
	if p, err := d.profiles.Get(ctx, s.CallerID); err == nil {
		ev.CallerName = p.DisplayName
		ev.CallerAvatar = p.AvatarURL
	} else {
		log.Warn("caller profile lookup failed", "caller_id", s.CallerID, "err", err)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error("incoming-call payload marshal failed", "session_id", s.ID, "err", err)
		return
	}

	if err := d.pub.Publish(ctx, ChannelFor(s.CalleeID), payload).Err(); err != nil {
		log.Warn("incoming-call publish failed",
			"session_id", s.ID,
			"callee_id", s.CalleeID,
			"err", err,
		)
	}
}

package notify

import (
	"context"
	"encoding/json"
	"testing"

	"voice-platform/internal/calls"
	"voice-platform/internal/social"

	"github.com/redis/go-redis/v9"
)

type capturingPublisher struct {
	channel string
	payload []byte
	err     error
}

func (p *capturingPublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.channel = channel
	p.payload = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

type stubProfiles struct {
	profile social.Profile
	err     error
}

func (s stubProfiles) Get(ctx context.Context, userID string) (social.Profile, error) {
	return s.profile, s.err
}

func TestCallRinging_PublishesToCalleeChannel(t *testing.T) {
	pub := &capturingPublisher{}
	d := NewDispatcher(pub, stubProfiles{profile: social.Profile{ID: "alice", DisplayName: "Alice", AvatarURL: "https://cdn/a.png"}})

	d.CallRinging(context.Background(), calls.Session{
		ID:       "s1",
		CallerID: "alice",
		CalleeID: "bob",
		RoomName: "dm-alice-bob",
		CallType: calls.CallTypeVoice,
		Status:   calls.StatusRinging,
	})

	if pub.channel != "calls:incoming:bob" {
		t.Fatalf("unexpected channel: %q", pub.channel)
	}

	var ev IncomingCall
	if err := json.Unmarshal(pub.payload, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.SessionID != "s1" || ev.CallerID != "alice" || ev.CallerName != "Alice" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.RoomName != "dm-alice-bob" || ev.CallType != "voice" || ev.Status != "ringing" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestCallRinging_ProfileFailureStillPublishes(t *testing.T) {
	pub := &capturingPublisher{}
	d := NewDispatcher(pub, stubProfiles{err: social.ErrNotFound})

	d.CallRinging(context.Background(), calls.Session{
		ID:       "s2",
		CallerID: "ghost",
		CalleeID: "bob",
		RoomName: "dm-bob-ghost",
		CallType: calls.CallTypeVoice,
		Status:   calls.StatusRinging,
	})

	if pub.payload == nil {
		t.Fatalf("event should be published even without a profile")
	}
	var ev IncomingCall
	_ = json.Unmarshal(pub.payload, &ev)
	if ev.CallerName != "" || ev.CallerID != "ghost" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

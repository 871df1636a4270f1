package calls

import (
	"context"
	"errors"
	"time"

	"voice-platform/internal/media"
	"voice-platform/internal/policy"
	"voice-platform/internal/rooms"
	"voice-platform/internal/social"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgument = errors.New("calls: invalid argument")
	ErrNotFriends      = errors.New("calls: users are not friends")
	ErrCallInProgress  = errors.New("calls: call already in progress")
	// ErrNotFound deliberately covers both "never existed" and "no longer in
	// the expected state" so non-participants cannot probe call state.
	ErrNotFound       = errors.New("calls: session not found or already ended")
	ErrNotParticipant = errors.New("calls: actor is not a session participant")
)

// Repository is the persistence contract for call sessions. Every transition
// method is conditional on the observed status; a miss is ErrNotFound.
type Repository interface {
	Insert(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	MarkActive(ctx context.Context, id, calleeID string, at time.Time) (Session, error)
	MarkEnded(ctx context.Context, id string, from, to Status, at time.Time) (Session, error)
}

// Notifier pushes session-state events to the callee's client. Delivery is
// best-effort; implementations must not fail the calling request.
type Notifier interface {
	CallRinging(ctx context.Context, s Session)
}

// Service is the direct-call lifecycle controller. It is the only writer of
// session status; transitions follow ringing→active→ended, ringing→declined,
// ringing→missed, with no way out of a terminal state.
type Service struct {
	repo     Repository
	friends  social.FriendshipChecker
	settings policy.SettingsStore
	issuer   media.CredentialIssuer
	notifier Notifier

	tokenTTL time.Duration
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, friends social.FriendshipChecker, settings policy.SettingsStore, issuer media.CredentialIssuer, notifier Notifier, tokenTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		friends:  friends,
		settings: settings,
		issuer:   issuer,
		notifier: notifier,
		tokenTTL: tokenTTL,
		clock:    time.Now,
	}
}

type InitiateResult struct {
	SessionID  string   `json:"session_id"`
	RoomName   string   `json:"room_name"`
	CallType   CallType `json:"call_type"`
	Credential string   `json:"credential"`
}

// Initiate starts a call attempt. Policy is evaluated here, once, against
// the callee's current monitoring settings; the effective call type is
// frozen on the row and the caller's credential derives from the same
// evaluation, so the two cannot diverge.
func (s *Service) Initiate(ctx context.Context, callerID, callerName, calleeID string, requested CallType) (InitiateResult, error) {
	if callerID == "" || calleeID == "" {
		return InitiateResult{}, ErrInvalidArgument
	}
	if callerID == calleeID {
		return InitiateResult{}, ErrInvalidArgument
	}
	switch requested {
	case CallTypeVoice, CallTypeVideo:
	case "":
		requested = CallTypeVoice
	default:
		return InitiateResult{}, ErrInvalidArgument
	}

	ok, err := s.friends.Accepted(ctx, callerID, calleeID)
	if err != nil {
		return InitiateResult{}, err
	}
	if !ok {
		return InitiateResult{}, ErrNotFriends
	}

	calleeSettings, err := s.settings.Get(ctx, calleeID)
	if err != nil {
		return InitiateResult{}, err
	}
	caps := policy.Evaluate(policy.Request{Video: requested == CallTypeVideo}, calleeSettings)

	effective := CallTypeVoice
	if caps.Video {
		effective = CallTypeVideo
	}

	room := rooms.Direct(callerID, calleeID)

	// Sign before inserting: a signing failure must not leave a ringing row
	// wedging the room.
	cred, err := s.issuer.IssueToken(room, callerID, callerName, caps, s.tokenTTL)
	if err != nil {
		return InitiateResult{}, err
	}

	now := s.clock().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		CallerID:  callerID,
		CalleeID:  calleeID,
		RoomName:  room,
		CallType:  effective,
		Status:    StatusRinging,
		CreatedAt: now,
	}
	if err := s.repo.Insert(ctx, sess); err != nil {
		return InitiateResult{}, err
	}

	if s.notifier != nil {
		s.notifier.CallRinging(ctx, sess)
	}

	return InitiateResult{
		SessionID:  sess.ID,
		RoomName:   room,
		CallType:   effective,
		Credential: cred,
	}, nil
}

type AnswerResult struct {
	RoomName   string   `json:"room_name"`
	CallType   CallType `json:"call_type"`
	Credential string   `json:"credential"`
}

// Answer transitions ringing→active for the callee. Policy is NOT
// re-evaluated: the callee's credential carries the call type frozen at
// Initiate, so a mid-call settings change never retroactively alters an
// in-flight call.
func (s *Service) Answer(ctx context.Context, actorID, actorName, sessionID string) (AnswerResult, error) {
	if actorID == "" || sessionID == "" {
		return AnswerResult{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	sess, err := s.repo.MarkActive(ctx, sessionID, actorID, now)
	if err != nil {
		return AnswerResult{}, err
	}

	caps := policy.Capabilities{Audio: true, Video: sess.CallType == CallTypeVideo}
	cred, err := s.issuer.IssueToken(sess.RoomName, actorID, actorName, caps, s.tokenTTL)
	if err != nil {
		return AnswerResult{}, err
	}

	return AnswerResult{
		RoomName:   sess.RoomName,
		CallType:   sess.CallType,
		Credential: cred,
	}, nil
}

type EndResult struct {
	Status Status `json:"status"`
}

// End resolves the terminal state from the observed status and the actor's
// role: a caller hanging up a ringing call means the callee missed it; a
// callee doing so declined it; ending an active call is just ended.
func (s *Service) End(ctx context.Context, actorID, sessionID string) (EndResult, error) {
	if actorID == "" || sessionID == "" {
		return EndResult{}, ErrInvalidArgument
	}

	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return EndResult{}, err
	}
	if actorID != sess.CallerID && actorID != sess.CalleeID {
		return EndResult{}, ErrNotParticipant
	}

	var terminal Status
	switch sess.Status {
	case StatusRinging:
		if actorID == sess.CallerID {
			terminal = StatusMissed
		} else {
			terminal = StatusDeclined
		}
	case StatusActive:
		terminal = StatusEnded
	default:
		// Already terminal; double-leave is not an error worth distinguishing.
		return EndResult{}, ErrNotFound
	}

	now := s.clock().UTC()
	if _, err := s.repo.MarkEnded(ctx, sessionID, sess.Status, terminal, now); err != nil {
		return EndResult{}, err
	}
	return EndResult{Status: terminal}, nil
}

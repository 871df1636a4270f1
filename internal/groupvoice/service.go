package groupvoice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"voice-platform/internal/media"
	"voice-platform/internal/policy"
	"voice-platform/internal/rooms"
	"voice-platform/internal/social"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgument = errors.New("groupvoice: invalid argument")
	ErrNotMember       = errors.New("groupvoice: user is not a channel member")
)

// Service authorizes channel voice sessions.
//
// Unlike direct calls, there is no session row: every token request is
// evaluated fresh against the requester's own monitoring settings, so a
// mid-session settings change takes effect the next time the client
// reconnects and asks for a token. This asymmetry is intentional.
type Service struct {
	log      LogRepository
	members  social.MembershipChecker
	settings policy.SettingsStore
	profiles social.ProfileStore
	issuer   media.CredentialIssuer

	tokenTTL time.Duration
	clock    func() time.Time
	logger   *slog.Logger
}

func NewService(log LogRepository, members social.MembershipChecker, settings policy.SettingsStore, profiles social.ProfileStore, issuer media.CredentialIssuer, tokenTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		log:      log,
		members:  members,
		settings: settings,
		profiles: profiles,
		issuer:   issuer,
		tokenTTL: tokenTTL,
		clock:    time.Now,
		logger:   logger,
	}
}

type TokenResult struct {
	RoomName    string `json:"room_name"`
	Credential  string `json:"credential"`
	Video       bool   `json:"video"`
	ScreenShare bool   `json:"screen_share"`
}

// IssueToken mints a channel voice-session credential for a member.
func (s *Service) IssueToken(ctx context.Context, userID, channelID string) (TokenResult, error) {
	if userID == "" || channelID == "" {
		return TokenResult{}, ErrInvalidArgument
	}

	ok, err := s.members.IsMember(ctx, userID, channelID)
	if err != nil {
		return TokenResult{}, err
	}
	if !ok {
		return TokenResult{}, ErrNotMember
	}

	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return TokenResult{}, err
	}
	caps := policy.Evaluate(policy.Request{Video: true, ScreenShare: true}, settings)

	displayName := ""
	if p, err := s.profiles.Get(ctx, userID); err == nil {
		displayName = p.DisplayName
	}

	room := rooms.Channel(channelID)
	cred, err := s.issuer.IssueToken(room, userID, displayName, caps, s.tokenTTL)
	if err != nil {
		return TokenResult{}, err
	}

	// The join log is best-effort audit; a log failure must not void a
	// credential the user already earned.
	s.append(ctx, ParticipantEvent{
		ChannelID:      channelID,
		UserID:         userID,
		Event:          EventTypeJoin,
		RoomName:       room,
		HadVideo:       caps.Video,
		HadScreenShare: caps.ScreenShare,
	})

	return TokenResult{
		RoomName:    room,
		Credential:  cred,
		Video:       caps.Video,
		ScreenShare: caps.ScreenShare,
	}, nil
}

// Leave records a participant leaving a channel session. Append-only; no
// session state is mutated because none exists.
func (s *Service) Leave(ctx context.Context, userID, channelID string, hadVideo, hadScreenShare bool) error {
	if userID == "" || channelID == "" {
		return ErrInvalidArgument
	}
	s.append(ctx, ParticipantEvent{
		ChannelID:      channelID,
		UserID:         userID,
		Event:          EventTypeLeave,
		RoomName:       rooms.Channel(channelID),
		HadVideo:       hadVideo,
		HadScreenShare: hadScreenShare,
	})
	return nil
}

// History lists recent participant events for a channel. Members only; the
// log is not visible from outside the channel.
func (s *Service) History(ctx context.Context, userID, channelID string, limit int) ([]ParticipantEvent, error) {
	if userID == "" || channelID == "" {
		return nil, ErrInvalidArgument
	}
	ok, err := s.members.IsMember(ctx, userID, channelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotMember
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.log.ListByChannel(ctx, channelID, limit)
}

func (s *Service) append(ctx context.Context, e ParticipantEvent) {
	e.ID = uuid.NewString()
	e.CreatedAt = s.clock().UTC()
	if err := s.log.Append(ctx, e); err != nil {
		s.logger.Error("participant log append failed",
			"channel_id", e.ChannelID,
			"user_id", e.UserID,
			"event", string(e.Event),
			"err", err,
		)
	}
}

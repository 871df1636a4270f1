package media

import (
	"errors"
	"fmt"
	"time"

	"voice-platform/internal/config"
	"voice-platform/internal/policy"

	"github.com/golang-jwt/jwt/v5"
)

// roomGrant is the transport's video-grant claim. It intentionally has no
// admin, recorder, or ingress fields: those capabilities are unrepresentable
// here, which is how the never-grant invariant is enforced.
type roomGrant struct {
	RoomJoin          bool     `json:"roomJoin"`
	Room              string   `json:"room"`
	CanPublish        bool     `json:"canPublish"`
	CanSubscribe      bool     `json:"canSubscribe"`
	CanPublishData    bool     `json:"canPublishData"`
	CanPublishSources []string `json:"canPublishSources"`
}

type roomClaims struct {
	jwt.RegisteredClaims

	Name  string    `json:"name,omitempty"`
	Video roomGrant `json:"video"`
}

// TokenIssuer signs room tokens with the transport's API key pair (HS256,
// key as issuer, secret as signing key). Signing is CPU-only; no network I/O.
type TokenIssuer struct {
	apiKey    string
	apiSecret []byte
}

func NewTokenIssuer(cfg config.MediaConfig) (*TokenIssuer, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("media api key and secret are required")
	}
	return &TokenIssuer{apiKey: cfg.APIKey, apiSecret: []byte(cfg.APISecret)}, nil
}

func (i *TokenIssuer) IssueToken(room, identity, displayName string, caps policy.Capabilities, ttl time.Duration) (string, error) {
	if room == "" || identity == "" {
		return "", fmt.Errorf("%w: room and identity are required", ErrSigningFailed)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be positive", ErrSigningFailed)
	}

	now := time.Now()
	claims := roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: displayName,
		Video: roomGrant{
			RoomJoin:          true,
			Room:              room,
			CanPublish:        true,
			CanSubscribe:      true,
			CanPublishData:    true,
			CanPublishSources: Sources(caps),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.apiSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}
	return signed, nil
}

// Package media issues room-scoped credentials for the external media
// transport. This service is a pure token issuer; it never talks to the
// transport's data plane.
package media

import (
	"errors"
	"time"

	"voice-platform/internal/policy"
)

// ErrSigningFailed wraps any token-signing error. A request that hits this
// fails outright; no partial credential is ever returned.
var ErrSigningFailed = errors.New("media: token signing failed")

// CredentialIssuer is the pluggable transport adapter boundary. Swapping
// media providers means swapping this implementation; room naming and call
// logic stay put.
type CredentialIssuer interface {
	IssueToken(room, identity, displayName string, caps policy.Capabilities, ttl time.Duration) (string, error)
}

// Track sources the transport understands. These are the ONLY sources a
// token can grant; there is deliberately no representation for admin,
// recording, or ingress capabilities anywhere in this package.
const (
	SourceMicrophone       = "microphone"
	SourceCamera           = "camera"
	SourceScreenShare      = "screen_share"
	SourceScreenShareAudio = "screen_share_audio"
)

// Sources maps effective capabilities to publishable track sources.
func Sources(caps policy.Capabilities) []string {
	out := []string{SourceMicrophone}
	if caps.Video {
		out = append(out, SourceCamera)
	}
	if caps.ScreenShare {
		out = append(out, SourceScreenShare, SourceScreenShareAudio)
	}
	return out
}

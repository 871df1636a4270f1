// Package social exposes the user-graph lookups the calling subsystem
// consumes but does not own: friendships, channel membership, and display
// profiles.
package social

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("social: not found")

// Profile is the display identity attached to notifications and tokens.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// FriendshipChecker answers "are A and B in an accepted mutual relationship".
type FriendshipChecker interface {
	Accepted(ctx context.Context, a, b string) (bool, error)
}

// MembershipChecker answers "is this user a member of this channel".
type MembershipChecker interface {
	IsMember(ctx context.Context, userID, channelID string) (bool, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (Profile, error)
}

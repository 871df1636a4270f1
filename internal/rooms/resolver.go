// Package rooms derives media-room names from participant identities.
//
// Names are pure functions of their inputs: both sides of a direct call, or
// every member of a channel, independently compute the same room without
// negotiation. No timestamps, no randomness.
package rooms

// Direct returns the room name for a 1:1 call between two users.
// Order-independent: Direct(a, b) == Direct(b, a).
func Direct(a, b string) string {
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return "dm-" + lo + "-" + hi
}

// Channel returns the room name for a channel voice session.
func Channel(channelID string) string {
	return "vc-" + channelID
}

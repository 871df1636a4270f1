package notify

// IncomingCall is the client-facing push payload for a new ringing session.
// Delivery is at-least-once; clients de-duplicate on session_id + status.
type IncomingCall struct {
	SessionID    string `json:"session_id"`
	CallerID     string `json:"caller_id"`
	CallerName   string `json:"caller_name"`
	CallerAvatar string `json:"caller_avatar,omitempty"`
	RoomName     string `json:"room_name"`
	CallType     string `json:"call_type"`
	Status       string `json:"status"`
}

// ChannelFor is the per-user bus channel carrying that user's call events.
func ChannelFor(userID string) string {
	return "calls:incoming:" + userID
}

package calls

import "time"

// Session is one direct-call attempt. The call's identity is this row's id,
// not the room name; repeated calls between the same pair produce new rows
// targeting the same logical room.
//
// Store invariant: at most one row per room_name may be in a live status
// (ringing or active) at any time, enforced by a partial unique index, not
// application locking. Rows are never deleted; terminal rows are retained
// for audit.
type Session struct {
	ID       string `json:"id" db:"id"`
	CallerID string `json:"caller_id" db:"caller_id"`
	CalleeID string `json:"callee_id" db:"callee_id"`
	RoomName string `json:"room_name" db:"room_name"`

	// CallType is fixed at creation; policy may have coerced it below what
	// the caller requested.
	CallType CallType `json:"call_type" db:"call_type"`

	Status Status `json:"status" db:"status"`

	// AnsweredAt is set exactly once, on the transition into active.
	// EndedAt is set exactly once, on the transition into a terminal state.
	AnsweredAt *time.Time `json:"answered_at,omitempty" db:"answered_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CallType string

const (
	CallTypeVoice CallType = "voice"
	CallTypeVideo CallType = "video"
)

type Status string

const (
	StatusRinging  Status = "ringing"
	StatusActive   Status = "active"
	StatusEnded    Status = "ended"
	StatusMissed   Status = "missed"
	StatusDeclined Status = "declined"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	switch s {
	case StatusEnded, StatusMissed, StatusDeclined:
		return true
	default:
		return false
	}
}

// Live reports whether the session occupies its room.
func (s Status) Live() bool {
	return s == StatusRinging || s == StatusActive
}

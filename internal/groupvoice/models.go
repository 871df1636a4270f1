package groupvoice

import "time"

// ParticipantEvent is an immutable, append-only log record of a join or
// leave on a channel voice session.
//
// Invariants:
// - Events are never updated or deleted.
// - The log is audit/analytics only; it never authorizes anything. Group
//   sessions have no single authorizing row; every token request stands
//   alone.
type ParticipantEvent struct {
	ID        string `json:"id" db:"id"`
	ChannelID string `json:"channel_id" db:"channel_id"`
	UserID    string `json:"user_id" db:"user_id"`

	Event EventType `json:"event" db:"event"`

	RoomName string `json:"room_name" db:"room_name"`

	HadVideo       bool `json:"had_video" db:"had_video"`
	HadScreenShare bool `json:"had_screen_share" db:"had_screen_share"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeJoin  EventType = "join"
	EventTypeLeave EventType = "leave"
)

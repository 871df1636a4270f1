package groupvoice

import (
	"context"
	"database/sql"
)

// LogRepository is the persistence contract for the participant log.
// It MUST be append-only; no Update/Delete methods are provided by design.
type LogRepository interface {
	Append(ctx context.Context, e ParticipantEvent) error
	ListByChannel(ctx context.Context, channelID string, limit int) ([]ParticipantEvent, error)
}

// PostgresLog persists participant events in voice_participant_log.
type PostgresLog struct {
	db *sql.DB
}

func NewPostgresLog(db *sql.DB) *PostgresLog {
	return &PostgresLog{db: db}
}

func (r *PostgresLog) Append(ctx context.Context, e ParticipantEvent) error {
	const q = `
INSERT INTO voice_participant_log (
  id, channel_id, user_id, event, room_name, had_video, had_screen_share, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.ChannelID,
		e.UserID,
		e.Event,
		e.RoomName,
		e.HadVideo,
		e.HadScreenShare,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresLog) ListByChannel(ctx context.Context, channelID string, limit int) ([]ParticipantEvent, error) {
	const q = `
SELECT id, channel_id, user_id, event, room_name, had_video, had_screen_share, created_at
FROM voice_participant_log
WHERE channel_id = $1
ORDER BY created_at DESC
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, channelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ParticipantEvent
	for rows.Next() {
		var e ParticipantEvent
		if err := rows.Scan(
			&e.ID,
			&e.ChannelID,
			&e.UserID,
			&e.Event,
			&e.RoomName,
			&e.HadVideo,
			&e.HadScreenShare,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

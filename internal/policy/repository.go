package policy

import (
	"context"
	"database/sql"
	"errors"
)

// SettingsStore looks up a user's monitoring configuration.
// Get returns (nil, nil) when the user has no row, i.e. is unrestricted.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (*Settings, error)
}

// PostgresStore reads monitoring_settings.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*Settings, error) {
	const q = `
SELECT user_id, tier, allow_video, allow_screen_share
FROM monitoring_settings
WHERE user_id = $1
`
	var out Settings
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(
		&out.UserID,
		&out.Tier,
		&out.AllowVideo,
		&out.AllowScreenShare,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

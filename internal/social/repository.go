package social

import (
	"context"
	"database/sql"
	"errors"
)

// Store implements the lookups against the platform's shared tables.
// All queries are read-only; this subsystem never writes the user graph.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Accepted(ctx context.Context, a, b string) (bool, error) {
	// Friendship rows are stored in whichever order the request was sent.
	const q = `
SELECT EXISTS (
  SELECT 1 FROM friendships
  WHERE status = 'accepted'
    AND ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
)
`
	var ok bool
	if err := s.db.QueryRowContext(ctx, q, a, b).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *Store) IsMember(ctx context.Context, userID, channelID string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM channel_members
  WHERE user_id = $1 AND channel_id = $2
)
`
	var ok bool
	if err := s.db.QueryRowContext(ctx, q, userID, channelID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *Store) Get(ctx context.Context, userID string) (Profile, error) {
	const q = `
SELECT id, display_name, COALESCE(avatar_url, '')
FROM users
WHERE id = $1
`
	var p Profile
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(
		&p.ID,
		&p.DisplayName,
		&p.AvatarURL,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

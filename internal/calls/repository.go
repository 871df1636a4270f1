package calls

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// NOTE: This repository assumes the following schema:
//
// CREATE TABLE direct_calls (
//   id          TEXT PRIMARY KEY,
//   caller_id   TEXT NOT NULL,
//   callee_id   TEXT NOT NULL,
//   room_name   TEXT NOT NULL,
//   call_type   TEXT NOT NULL,
//   status      TEXT NOT NULL,
//   answered_at TIMESTAMPTZ,
//   ended_at    TIMESTAMPTZ,
//   created_at  TIMESTAMPTZ NOT NULL
// );
// CREATE UNIQUE INDEX direct_calls_live_room
//   ON direct_calls (room_name) WHERE status IN ('ringing', 'active');
//
// The partial unique index is what closes the simultaneous-initiate race:
// the second writer's insert is rejected at the store, never merged.

const pgUniqueViolation = "23505"

// PostgresRepo persists call sessions.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Insert(ctx context.Context, s Session) error {
	const q = `
INSERT INTO direct_calls (
  id, caller_id, callee_id, room_name, call_type, status, answered_at, ended_at, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := r.db.ExecContext(ctx, q,
		s.ID,
		s.CallerID,
		s.CalleeID,
		s.RoomName,
		s.CallType,
		s.Status,
		s.AnsweredAt,
		s.EndedAt,
		s.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrCallInProgress
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Session, error) {
	const q = `
SELECT id, caller_id, callee_id, room_name, call_type, status, answered_at, ended_at, created_at
FROM direct_calls
WHERE id = $1
`
	var s Session
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID,
		&s.CallerID,
		&s.CalleeID,
		&s.RoomName,
		&s.CallType,
		&s.Status,
		&s.AnsweredAt,
		&s.EndedAt,
		&s.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// MarkActive performs the conditional ringing→active transition. The WHERE
// clause carries both the status check and the callee check so a non-callee
// or a stale answer both surface as the same ErrNotFound.
func (r *PostgresRepo) MarkActive(ctx context.Context, id, calleeID string, at time.Time) (Session, error) {
	const q = `
UPDATE direct_calls
SET status = 'active', answered_at = $3
WHERE id = $1 AND callee_id = $2 AND status = 'ringing'
RETURNING id, caller_id, callee_id, room_name, call_type, status, answered_at, ended_at, created_at
`
	var s Session
	if err := r.db.QueryRowContext(ctx, q, id, calleeID, at).Scan(
		&s.ID,
		&s.CallerID,
		&s.CalleeID,
		&s.RoomName,
		&s.CallType,
		&s.Status,
		&s.AnsweredAt,
		&s.EndedAt,
		&s.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// MarkEnded moves a session from an observed live status into a terminal
// one. The observed status is part of the condition, so of two racing
// writers only one sees a row; the loser gets ErrNotFound.
func (r *PostgresRepo) MarkEnded(ctx context.Context, id string, from, to Status, at time.Time) (Session, error) {
	const q = `
UPDATE direct_calls
SET status = $3, ended_at = $4
WHERE id = $1 AND status = $2
RETURNING id, caller_id, callee_id, room_name, call_type, status, answered_at, ended_at, created_at
`
	var s Session
	if err := r.db.QueryRowContext(ctx, q, id, from, to, at).Scan(
		&s.ID,
		&s.CallerID,
		&s.CalleeID,
		&s.RoomName,
		&s.CallType,
		&s.Status,
		&s.AnsweredAt,
		&s.EndedAt,
		&s.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

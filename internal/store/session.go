package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Session is the record of one finished quiz session.
type Session struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// SessionRepository stores session history.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a finished session.
func (r *SessionRepository) Create(ctx context.Context, sess *Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, username, score, total, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Username, sess.Score, sess.Total, sess.StartedAt.UTC(), sess.FinishedAt.UTC(),
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*Session, error) {
	sess := &Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, score, total, started_at, finished_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Username, &sess.Score, &sess.Total, &sess.StartedAt, &sess.FinishedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// Recent returns up to limit sessions, newest first.
func (r *SessionRepository) Recent(ctx context.Context, limit int) ([]*Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, score, total, started_at, finished_at
		 FROM sessions ORDER BY finished_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		if err := rows.Scan(&sess.ID, &sess.Username, &sess.Score, &sess.Total, &sess.StartedAt, &sess.FinishedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// DeleteAll clears the session history.
func (r *SessionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions`)
	return err
}

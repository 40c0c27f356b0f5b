package session

import (
	"context"
	"database/sql"

	"hatake-api/internal/db"

	"github.com/pkg/errors"
)

// PostgresStore keeps sessions in the user_sessions table.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" || s.UserID == "" {
		return errors.New("session: missing session_id or user_id")
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO user_sessions (user_id, session_token, expires_at)
		VALUES ($1, $2, $3)
	`, s.UserID, s.SessionID, s.ExpiresAt)
	if err != nil {
		return errors.Wrap(err, "session: insert")
	}

	return nil
}

func (p *PostgresStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s := Session{SessionID: sessionID}

	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, created_at, expires_at
		FROM user_sessions
		WHERE session_token = $1
	`, sessionID).Scan(&s.UserID, &s.CreatedAt, &s.ExpiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "session: select")
	}

	return &s, nil
}

func (p *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	_, err := p.db.ExecContext(ctx, `
		DELETE FROM user_sessions
		WHERE session_token = $1
	`, sessionID)
	return errors.Wrap(err, "session: delete")
}

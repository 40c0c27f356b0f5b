package users

import (
	"context"
	"database/sql"

	"hatake-api/internal/auth"
	"hatake-api/internal/db"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("user not found")

// Repository loads user projections by id.
type Repository interface {
	FindByID(ctx context.Context, userID string) (*auth.User, error)
}

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByID(ctx context.Context, userID string) (*auth.User, error) {
	var u auth.User
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, email, name, COALESCE(picture, ''), email_verified, is_admin, created_at
		FROM users
		WHERE user_id = $1
	`, userID).Scan(
		&u.UserID,
		&u.Email,
		&u.Name,
		&u.Picture,
		&u.EmailVerified,
		&u.IsAdmin,
		&u.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "users: find by id")
	}

	return &u, nil
}

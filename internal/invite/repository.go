package invite

import (
	"context"
	"database/sql"

	"hatake-api/internal/db"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("invite code not found")

// Inviter is the public view of the user who owns an invite code.
type Inviter struct {
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	ReferralCount int    `json:"referralCount"`
}

type Repository interface {
	FindInviter(ctx context.Context, code string) (*Inviter, error)
}

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindInviter(ctx context.Context, code string) (*Inviter, error) {
	var inv Inviter
	err := r.db.QueryRowContext(ctx, `
		SELECT name, COALESCE(picture, ''), referral_count
		FROM users
		WHERE invite_code = $1
	`, code).Scan(&inv.Name, &inv.Picture, &inv.ReferralCount)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "invite: find inviter")
	}

	return &inv, nil
}

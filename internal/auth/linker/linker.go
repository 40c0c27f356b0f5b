package linker

import (
	"context"
	"database/sql"

	"hatake-api/internal/auth"
	"hatake-api/internal/db"
	"hatake-api/internal/utils"

	"github.com/pkg/errors"
)

var ErrNilIdentity = errors.New("identity is nil")

// Linker maps a verified OIDC identity onto a users row. The provider
// subject is stored in users.google_id.
type Linker struct {
	db    *db.DB
	newID func() string
}

func New(db *db.DB) *Linker {
	return &Linker{
		db:    db,
		newID: func() string { return utils.NewID("user") },
	}
}

// Link returns the user id for identity, creating or updating the user
// as needed.
func (l *Linker) Link(
	ctx context.Context,
	identity *auth.Identity,
) (string, error) {

	if identity == nil {
		return "", ErrNilIdentity
	}

	// 1. Known subject
	var userID string
	err := l.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM users
		WHERE google_id = $1
	`,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		return userID, nil
	}
	if err != sql.ErrNoRows {
		return "", errors.Wrap(err, "linker: find by subject")
	}

	// 2. Existing account with the same email
	err = l.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`,
		identity.Email,
	).Scan(&userID)

	if err == nil {
		_, err = l.db.ExecContext(ctx, `
			UPDATE users
			SET name = $2, picture = $3, google_id = $4, email_verified = true
			WHERE user_id = $1
		`,
			userID,
			identity.Name,
			identity.Picture,
			identity.ProviderUserID,
		)
		if err != nil {
			return "", errors.Wrap(err, "linker: update user")
		}

		return userID, nil
	}
	if err != sql.ErrNoRows {
		return "", errors.Wrap(err, "linker: find by email")
	}

	// 3. New user
	userID = l.newID()
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO users (user_id, email, name, picture, google_id, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		userID,
		identity.Email,
		identity.Name,
		identity.Picture,
		identity.ProviderUserID,
		identity.EmailVerified,
	)
	if err != nil {
		return "", errors.Wrap(err, "linker: create user")
	}

	return userID, nil
}

package credentials

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"hatake-api/internal/auth"
	"hatake-api/internal/db"
	"hatake-api/internal/utils"

	"github.com/pkg/errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("user already exists")
)

type Service struct {
	db    *db.DB
	newID func() string
}

func NewService(db *db.DB) *Service {
	return &Service{
		db:    db,
		newID: func() string { return utils.NewID("user") },
	}
}

// Register creates a password user. Emails are compared case-insensitively.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
	name string,
) (*auth.User, error) {

	email = strings.TrimSpace(email)

	// 1. Reject taken emails
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE LOWER(email) = LOWER($1)
		)
	`, email).Scan(&exists)
	if err != nil {
		return nil, errors.Wrap(err, "credentials: check email")
	}
	if exists {
		return nil, ErrAlreadyRegistered
	}

	// 2. Hash password
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 3. Insert user
	u := auth.User{
		UserID: s.newID(),
		Email:  email,
		Name:   name,
	}
	var createdAt time.Time
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (user_id, email, name, password_hash, email_verified)
		VALUES ($1, $2, $3, $4, false)
		RETURNING created_at
	`, u.UserID, u.Email, u.Name, hash).Scan(&createdAt)
	if err != nil {
		return nil, errors.Wrap(err, "credentials: insert user")
	}
	u.CreatedAt = createdAt

	return &u, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (*auth.User, error) {

	var (
		u            auth.User
		passwordHash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, email, name, COALESCE(picture, ''), email_verified, is_admin, created_at,
		       COALESCE(password_hash, '')
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, strings.TrimSpace(email)).Scan(
		&u.UserID,
		&u.Email,
		&u.Name,
		&u.Picture,
		&u.EmailVerified,
		&u.IsAdmin,
		&u.CreatedAt,
		&passwordHash,
	)

	if err == sql.ErrNoRows {
		burnCompare(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "credentials: find user")
	}

	// OAuth-only accounts have no password
	if passwordHash == "" {
		burnCompare(password)
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(passwordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &u, nil
}

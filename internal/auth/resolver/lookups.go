package resolver

import (
	"context"
	"errors"
	"time"

	"hatake-api/internal/auth"
	"hatake-api/internal/auth/token"
	"hatake-api/internal/session"
	"hatake-api/internal/users"
)

// TokenLookup resolves signed bearer tokens.
type TokenLookup struct {
	Tokens *token.Manager
	Users  users.Repository
}

func (l TokenLookup) ResolveBearerToken(ctx context.Context, raw string) (*auth.User, error) {
	claims, err := l.Tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	return findUser(ctx, l.Users, claims.UserID)
}

// SessionLookup resolves session cookies against the session store.
type SessionLookup struct {
	Sessions session.Store
	Users    users.Repository
	Now      func() time.Time
}

func (l SessionLookup) ResolveSessionToken(ctx context.Context, sessionID string) (*auth.User, error) {
	sess, err := l.Sessions.Get(ctx, sessionID)
	if err != nil || sess == nil {
		return nil, err
	}

	now := time.Now
	if l.Now != nil {
		now = l.Now
	}

	if sess.Expired(now()) {
		return nil, nil
	}

	return findUser(ctx, l.Users, sess.UserID)
}

func findUser(ctx context.Context, repo users.Repository, userID string) (*auth.User, error) {
	u, err := repo.FindByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

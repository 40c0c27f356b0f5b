package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"hatake-api/internal/auth"
	"hatake-api/internal/auth/token"
	"hatake-api/internal/session"
	"hatake-api/internal/users"

	"github.com/stretchr/testify/require"
)

var (
	_ BearerLookup         = TokenLookup{}
	_ SessionTokenResolver = SessionLookup{}
)

type memUsers map[string]*auth.User

func (m memUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	if id == "broken" {
		return nil, errors.New("db down")
	}
	u, ok := m[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

type memSessions struct {
	sessions map[string]session.Session
	err      error
	deleted  []string
}

func (m *memSessions) Create(_ context.Context, s session.Session) error {
	m.sessions[s.SessionID] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (*session.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.sessions, id)
	return nil
}

func TestTokenLookup(t *testing.T) {
	tokens, err := token.NewManager(token.Config{Secret: []byte("s3cret"), Issuer: "hatake-api", TTL: time.Hour})
	require.NoError(t, err)
	lookup := TokenLookup{Tokens: tokens, Users: memUsers{"u1": u1}}
	ctx := context.Background()

	raw, err := tokens.Issue(u1)
	require.NoError(t, err)
	got, err := lookup.ResolveBearerToken(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, u1, got)

	_, err = lookup.ResolveBearerToken(ctx, "bad")
	require.ErrorIs(t, err, token.ErrInvalidToken)

	ghost, err := tokens.Issue(&auth.User{UserID: "deleted-user"})
	require.NoError(t, err)
	got, err = lookup.ResolveBearerToken(ctx, ghost)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSessionLookup(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &memSessions{sessions: map[string]session.Session{
		"tok456":  {SessionID: "tok456", UserID: "u2", ExpiresAt: now.Add(time.Hour)},
		"expired": {SessionID: "expired", UserID: "u2", ExpiresAt: now.Add(-time.Minute)},
		"broken":  {SessionID: "broken", UserID: "broken", ExpiresAt: now.Add(time.Hour)},
	}}
	lookup := SessionLookup{Sessions: store, Users: memUsers{"u2": u2}, Now: func() time.Time { return now }}
	ctx := context.Background()

	got, err := lookup.ResolveSessionToken(ctx, "tok456")
	require.NoError(t, err)
	require.Equal(t, u2, got)

	got, err = lookup.ResolveSessionToken(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = lookup.ResolveSessionToken(ctx, "expired")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Empty(t, store.deleted, "resolution must not write")

	_, err = lookup.ResolveSessionToken(ctx, "broken")
	require.Error(t, err)
}

func TestSessionLookupStoreError(t *testing.T) {
	store := &memSessions{err: errors.New("redis: connection refused")}
	lookup := SessionLookup{Sessions: store, Users: memUsers{}}

	got, err := lookup.ResolveSessionToken(context.Background(), "tok456")
	require.Error(t, err)
	require.Nil(t, got)
}

func TestResolverWithConcreteLookups(t *testing.T) {
	tokens, err := token.NewManager(token.Config{Secret: []byte("s3cret"), Issuer: "hatake-api", TTL: time.Hour})
	require.NoError(t, err)
	repo := memUsers{"u1": u1, "u2": u2}
	store := &memSessions{sessions: map[string]session.Session{
		"tok456": {SessionID: "tok456", UserID: "u2", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	r := New(TokenLookup{Tokens: tokens, Users: repo}, SessionLookup{Sessions: store, Users: repo})

	raw, err := tokens.Issue(u1)
	require.NoError(t, err)

	require.Equal(t, u1, r.Resolve(request("Bearer "+raw, "tok456")).User())
	require.Equal(t, u2, r.Resolve(request("Bearer bad", "tok456")).User())
	require.False(t, r.Resolve(request("Bearer bad", "")).Authenticated())
}

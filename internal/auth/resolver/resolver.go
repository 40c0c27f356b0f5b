// Package resolver turns the credentials on an incoming request into an
// authenticated user. Two channels are supported, tried in a fixed order:
// an "Authorization: Bearer <token>" header, then the session_token cookie.
package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"hatake-api/internal/auth"
	"hatake-api/internal/logger"
	"hatake-api/internal/session"
)

const bearerPrefix = "Bearer "

// BearerLookup maps a bearer token to a user. (nil, nil) means no match.
type BearerLookup interface {
	ResolveBearerToken(ctx context.Context, token string) (*auth.User, error)
}

// SessionTokenResolver maps a session cookie value to a user. (nil, nil)
// means no match.
type SessionTokenResolver interface {
	ResolveSessionToken(ctx context.Context, token string) (*auth.User, error)
}

// Channel names the credential that produced a result.
type Channel string

const (
	ChannelNone   Channel = "none"
	ChannelBearer Channel = "bearer"
	ChannelCookie Channel = "cookie"
)

// Result is either an authenticated user or the unauthenticated sentinel.
type Result struct {
	user    *auth.User
	channel Channel
}

// Unauthenticated is the single denial outcome. Absent and invalid
// credentials both resolve to it.
var Unauthenticated = Result{channel: ChannelNone}

func authenticated(u *auth.User, ch Channel) Result {
	return Result{user: u, channel: ch}
}

func (r Result) Authenticated() bool { return r.user != nil }

// User returns the resolved user, or nil when unauthenticated.
func (r Result) User() *auth.User { return r.user }

// Channel is for logging and metrics only; callers must not branch on it.
func (r Result) Channel() Channel { return r.channel }

type step struct {
	channel    Channel
	credential func(r *http.Request) (string, bool)
	lookup     func(ctx context.Context, token string) (*auth.User, error)
}

type Resolver struct {
	steps   []step
	metrics *Metrics
}

type Option func(*Resolver)

// WithMetrics records every resolution outcome on m.
func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

func New(bearer BearerLookup, sessions SessionTokenResolver, opts ...Option) *Resolver {
	r := &Resolver{
		steps: []step{
			{channel: ChannelBearer, credential: BearerToken, lookup: bearer.ResolveBearerToken},
			{channel: ChannelCookie, credential: cookieToken, lookup: sessions.ResolveSessionToken},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the credential chain and stops at the first user found.
// Lookup errors are logged and treated as "no user"; they never escape.
func (r *Resolver) Resolve(req *http.Request) Result {
	ctx := req.Context()

	for _, s := range r.steps {
		token, ok := s.credential(req)
		if !ok {
			continue
		}

		user, err := safeLookup(ctx, s.lookup, token)
		if err != nil {
			logger.Debug("credential lookup failed", map[string]any{
				"channel": string(s.channel),
				"error":   err.Error(),
			})
			r.metrics.record(ctx, s.channel, outcomeError)
			continue
		}
		if user == nil {
			r.metrics.record(ctx, s.channel, outcomeRejected)
			continue
		}

		r.metrics.record(ctx, s.channel, outcomeAuthenticated)
		return authenticated(user, s.channel)
	}

	r.metrics.record(ctx, ChannelNone, outcomeDenied)
	return Unauthenticated
}

func safeLookup(
	ctx context.Context,
	lookup func(context.Context, string) (*auth.User, error),
	token string,
) (user *auth.User, err error) {
	defer func() {
		if p := recover(); p != nil {
			user, err = nil, fmt.Errorf("lookup panicked: %v", p)
		}
	}()
	return lookup(ctx, token)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The prefix match is exact and case-sensitive.
func BearerToken(r *http.Request) (string, bool) {
	value := r.Header.Get("Authorization")
	if !strings.HasPrefix(value, bearerPrefix) {
		return "", false
	}

	token := value[len(bearerPrefix):]
	if token == "" {
		return "", false
	}

	return token, true
}

func cookieToken(r *http.Request) (string, bool) {
	token := session.TokenFromRequest(r)
	return token, token != ""
}

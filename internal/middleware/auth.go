package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"hatake-api/internal/auth"
	"hatake-api/internal/auth/resolver"
)

// unexported, collision-proof context key
type userContextKeyType struct{}

var userKey = userContextKeyType{}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	u, ok := ctx.Value(userKey).(*auth.User)
	return u, ok && u != nil
}

// ContextWithUser stores the authenticated user on ctx.
func ContextWithUser(ctx context.Context, u *auth.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

type AuthMiddleware struct {
	Resolver *resolver.Resolver
}

func NewAuthMiddleware(r *resolver.Resolver) *AuthMiddleware {
	return &AuthMiddleware{Resolver: r}
}

// RequireAuth rejects requests that do not resolve to a user. Missing and
// invalid credentials get the same response.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := a.Resolver.Resolve(r)
		if !res.Authenticated() {
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), res.User())))
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
}

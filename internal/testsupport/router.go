// Package testsupport builds gin routers wired with the real auth
// middleware and in-memory credential lookups for handler tests.
//
// Test-only: import it from _test.go files, never from production code.
package testsupport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"hatake-api/internal/auth"
	"hatake-api/internal/auth/resolver"
	"hatake-api/internal/middleware"
	"hatake-api/internal/session"

	"github.com/gin-gonic/gin"
)

// Tokens maps a credential string to the user it resolves to. The same map
// serves both the bearer and the cookie channel.
type Tokens map[string]*auth.User

func (t Tokens) ResolveBearerToken(_ context.Context, tok string) (*auth.User, error) {
	return t[tok], nil
}

func (t Tokens) ResolveSessionToken(_ context.Context, tok string) (*auth.User, error) {
	return t[tok], nil
}

// Router returns an engine with a public "/api" group and an authenticated
// "/api" group guarded by the resolver over tokens.
func Router(tokens Tokens) (engine *gin.Engine, public, protected *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)

	authMW := middleware.NewAuthMiddleware(resolver.New(tokens, tokens))

	engine = gin.New()
	public = engine.Group("/api")
	protected = engine.Group("/api")
	protected.Use(middleware.GinRequireAuth(authMW))

	return engine, public, protected
}

// Do performs a request against h. A non-empty bearer is sent as an
// Authorization header; a non-empty cookie as the session cookie.
func Do(h http.Handler, method, path, body, bearer, cookie string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"hatake-api/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET,OPTIONS,PATCH,DELETE,POST,PUT"
	corsAllowHeaders = "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version, Authorization, Cookie"
)

// CORS echoes allow-listed origins with credentials enabled and answers
// preflight requests directly. Requests without an Origin header pass through.
// With no configured origins the middleware is a no-op.
func CORS(origins []string) (gin.HandlerFunc, error) {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		normalized, err := normalizeOrigin(o)
		if err != nil {
			return nil, fmt.Errorf("parse origin %q: %w", o, err)
		}
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }, nil
	}

	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if origin == "" {
			c.Next()
			return
		}

		normalized, err := normalizeOrigin(origin)
		if _, ok := allowed[normalized]; err != nil || !ok {
			logger.Warn("blocked CORS origin", map[string]any{
				"origin": origin,
				"path":   c.Request.URL.Path,
			})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}, nil
}

func normalizeOrigin(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "", nil
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("origin must include scheme and host")
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), nil
}

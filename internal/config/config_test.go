package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/hatake")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("APP_PORT", "")

	cfg := Load()

	require.Equal(t, "8080", cfg.AppPort)
	require.Equal(t, SessionBackendPostgres, cfg.SessionBackend)
	require.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	require.True(t, cfg.CookieSecure)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "REDIS")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()

	require.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresMalformedDuration(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")

	require.Equal(t, 7*24*time.Hour, Load().JWTTTL)
}

func TestValidateReportsMissingValues(t *testing.T) {
	cfg := Config{SessionBackend: "memcached", SessionTTL: time.Hour, JWTTTL: time.Hour}

	err := cfg.Validate()

	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_DSN")
	require.Contains(t, err.Error(), "JWT_SECRET")
	require.Contains(t, err.Error(), "memcached")
}

func TestOAuthEnabled(t *testing.T) {
	require.False(t, Config{GoogleClientID: "id"}.OAuthEnabled())
	require.True(t, Config{
		GoogleClientID:     "id",
		GoogleClientSecret: "secret",
		GoogleRedirectURL:  "https://hatake.example/oauth/callback/google",
	}.OAuthEnabled())
}

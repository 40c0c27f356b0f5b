package token

import (
	"strings"
	"time"

	"hatake-api/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the bearer token claims handed to non-browser clients.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Manager issues and verifies HS256 bearer tokens.
type Manager struct {
	config Config
	now    func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	return &Manager{config: cfg, now: time.Now}, nil
}

func (m *Manager) Issue(user *auth.User) (string, error) {
	if user == nil || user.UserID == "" {
		return "", errors.New("token: user id is required")
	}

	now := m.now()
	claims := Claims{
		UserID: user.UserID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
	if err != nil {
		return "", errors.Wrap(err, "token: sign")
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry. Any failure is
// reported as ErrInvalidToken wrapping the parser error.
func (m *Manager) Verify(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.config.Secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

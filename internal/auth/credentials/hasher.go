package credentials

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	bcryptCost        = 10
)

var ErrPasswordTooShort = errors.New("password too short")

// HashPassword returns the bcrypt hash stored in users.password_hash.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword reports a non-nil error unless password matches hash.
func VerifyPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

var dummyHash = sync.OnceValue(func() string {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	return string(h)
})

// burnCompare spends the same bcrypt work as a real check so unknown
// emails answer no faster than wrong passwords.
func burnCompare(password string) {
	_ = VerifyPassword(dummyHash(), password)
}

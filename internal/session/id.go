package session

import (
	"hatake-api/internal/utils"

	"github.com/pkg/errors"
)

// idBytes gives session ids 256 bits of entropy.
const idBytes = 32

// GenerateID returns a new opaque, URL-safe session id.
func GenerateID() (string, error) {
	id, err := utils.RandomString(idBytes)
	if err != nil {
		return "", errors.Wrap(err, "session: generate id")
	}
	return id, nil
}

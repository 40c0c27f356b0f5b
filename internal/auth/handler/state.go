package handler

import (
	"crypto/subtle"
	"time"

	"hatake-api/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	stateCookieName = "__oauth_state"
	stateTTL        = 5 * time.Minute

	flowSecretBytes = 32
)

// generateState issues the anti-CSRF value echoed back by the provider.
func generateState(c *gin.Context, secure bool) (string, error) {
	state, err := utils.RandomString(flowSecretBytes)
	if err != nil {
		return "", err
	}

	setFlowCookie(c, stateCookieName, state, int(stateTTL.Seconds()), secure)

	return state, nil
}

func validateState(c *gin.Context) bool {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return false
	}

	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(stateQuery)) == 1
}

package handler

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"time"

	"hatake-api/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	pkceCookieName = "__oauth_pkce"
	pkceTTL        = 5 * time.Minute
)

// generatePKCE stores an S256 verifier in a cookie and returns its challenge.
func generatePKCE(c *gin.Context, secure bool) (verifier string, challenge string, err error) {
	verifier, err = utils.RandomString(flowSecretBytes)
	if err != nil {
		return "", "", err
	}

	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])

	setFlowCookie(c, pkceCookieName, verifier, int(pkceTTL.Seconds()), secure)

	return verifier, challenge, nil
}

func getPKCEVerifier(c *gin.Context) string {
	cookie, err := c.Request.Cookie(pkceCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setFlowCookie(c *gin.Context, name, value string, maxAge int, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/oauth",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clearFlowCookies expires the single-use state and verifier cookies.
func clearFlowCookies(c *gin.Context, secure bool) {
	setFlowCookie(c, stateCookieName, "", -1, secure)
	setFlowCookie(c, pkceCookieName, "", -1, secure)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"hatake-api/internal/auth"
	"hatake-api/internal/auth/provider"
	"hatake-api/internal/logger"
	"hatake-api/internal/middleware"
	"hatake-api/internal/session"

	"github.com/gin-gonic/gin"
)

// CredentialService registers and authenticates password users.
type CredentialService interface {
	Register(ctx context.Context, email, password, name string) (*auth.User, error)
	Authenticate(ctx context.Context, email, password string) (*auth.User, error)
}

// IdentityLinker maps a verified provider identity to a user id.
type IdentityLinker interface {
	Link(ctx context.Context, identity *auth.Identity) (string, error)
}

// TokenIssuer signs bearer tokens for non-browser clients.
type TokenIssuer interface {
	Issue(user *auth.User) (string, error)
}

type Deps struct {
	Providers    *provider.Registry
	Sessions     session.Store
	Credentials  CredentialService
	Linker       IdentityLinker
	Tokens       TokenIssuer
	SessionTTL   time.Duration
	CookieSecure bool
}

type Handler struct {
	providers         *provider.Registry
	sessionStore      session.Store
	credentialService CredentialService
	linker            IdentityLinker
	tokens            TokenIssuer
	sessionTTL        time.Duration
	cookie            session.CookieOptions
	now               func() time.Time
}

func NewHandler(d Deps) *Handler {
	providers := d.Providers
	if providers == nil {
		providers = provider.NewRegistry()
	}

	return &Handler{
		providers:         providers,
		sessionStore:      d.Sessions,
		credentialService: d.Credentials,
		linker:            d.Linker,
		tokens:            d.Tokens,
		sessionTTL:        d.SessionTTL,
		cookie: session.CookieOptions{
			Secure:   d.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		},
		now: time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, public, protected *gin.RouterGroup) {
	r.GET("/oauth/login/:provider", h.login)
	r.GET("/oauth/callback/:provider", h.callback)

	public.POST("/auth/signup", h.Signup)
	public.POST("/auth/login", h.Login)
	public.POST("/auth/logout", h.Logout)

	protected.GET("/auth/me", h.Me)
}

func (h *Handler) login(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state, err := generateState(c, h.cookie.Secure)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	_, codeChallenge, err := generatePKCE(c, h.cookie.Secure)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, codeChallenge))
}

func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "missing code",
		})
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}
	clearFlowCookies(c, h.cookie.Secure)

	identity, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		codeVerifier,
	)
	if err != nil {
		logger.Warn("oidc code exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	userID, err := h.linker.Link(c.Request.Context(), identity)
	if err != nil {
		logger.Error("link identity failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	if err := h.startSession(c, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	logger.Info("login success", map[string]any{
		"user_id":  userID,
		"provider": providerName,
		"ip":       c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user_id": userID,
	})
}

// Logout drops the cookie's session, if any, and always clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if token := session.TokenFromRequest(c.Request); token != "" {
		if err := h.sessionStore.Delete(c.Request.Context(), token); err != nil {
			logger.Warn("delete session failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	session.ClearCookie(c.Writer, h.cookie)

	c.Status(http.StatusNoContent)
}

// Me returns the user resolved for this request.
func (h *Handler) Me(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u})
}

// startSession persists a new session for userID and sets the cookie.
func (h *Handler) startSession(c *gin.Context, userID string) error {
	sessionID, err := session.GenerateID()
	if err != nil {
		logger.Error("generate session id failed", map[string]any{"error": err.Error()})
		return err
	}

	now := h.now()
	expiresAt := now.Add(h.sessionTTL)

	err = h.sessionStore.Create(c.Request.Context(), session.Session{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		logger.Error("persist session failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return err
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, h.cookie)
	return nil
}

// respondWithSession finishes a password login or signup.
func (h *Handler) respondWithSession(c *gin.Context, u *auth.User) {
	if err := h.startSession(c, u.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		logger.Error("issue token failed", map[string]any{
			"user_id": u.UserID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u,
		"token":   token,
	})
}

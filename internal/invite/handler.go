package invite

import (
	"errors"
	"net/http"
	"strings"

	"hatake-api/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts invite validation. It needs no session.
func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/invite/:code", h.validate)
}

func (h *Handler) validate(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid invite code"})
		return
	}

	inviter, err := h.repo.FindInviter(c.Request.Context(), code)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid invite code"})
		return
	}
	if err != nil {
		logger.Error("validate invite failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"inviter": inviter,
	})
}

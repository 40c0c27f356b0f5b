package profile

import (
	"errors"
	"net/http"

	"hatake-api/internal/logger"
	"hatake-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/users/:userId", h.get)
}

func (h *Handler) get(c *gin.Context) {
	viewer, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	userID := c.Param("userId")

	p, err := h.repo.Profile(c.Request.Context(), viewer.UserID, userID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		logger.Error("get user profile failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    p,
	})
}

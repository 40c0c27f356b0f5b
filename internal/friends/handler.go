package friends

import (
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

// RegisterRoutes mounts the friend endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/friends/requests", h.listRequests)
}

func (h *Handler) listRequests(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	requests, err := h.repo.PendingRequests(c.Request.Context(), user.UserID)
	if err != nil {
		logger.Error("get friend requests failed", map[string]any{
			"user_id": user.UserID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if requests == nil {
		requests = []Request{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
	})
}

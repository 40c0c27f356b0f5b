package collection

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"hatake-api/internal/logger"
	"hatake-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

// maxBulkDelete caps a single request so one call cannot build an
// unbounded ANY($1) array.
const maxBulkDelete = 500

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.POST("/collection/bulk-delete", h.bulkDelete)
}

type bulkDeleteRequest struct {
	IDs []json.RawMessage `json:"ids"`
}

// parseItemID accepts an id sent either as a JSON number or as a numeric
// string. An empty string reports ok=false with no error.
func parseItemID(raw json.RawMessage) (id int64, ok bool, err error) {
	raw = bytes.TrimSpace(raw)

	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, false, nil
		}
	}

	id, err = strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false, err
	}
	if id <= 0 {
		return 0, false, strconv.ErrRange
	}
	return id, true, nil
}

func (h *Handler) bulkDelete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item IDs are required"})
		return
	}

	ids := make([]int64, 0, len(req.IDs))
	seen := make(map[int64]struct{}, len(req.IDs))
	for _, raw := range req.IDs {
		id, ok, err := parseItemID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
			return
		}
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item IDs are required"})
		return
	}
	if len(ids) > maxBulkDelete {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many item IDs"})
		return
	}

	deleted, err := h.repo.DeleteItems(c.Request.Context(), user.UserID, ids)
	if err != nil {
		logger.Error("bulk delete failed", map[string]any{
			"user_id": user.UserID,
			"count":   len(ids),
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
	})
}

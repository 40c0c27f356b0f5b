package marketplace

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"hatake-api/internal/logger"
	"hatake-api/internal/middleware"
	"hatake-api/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 50
	maxLimit     = 100

	defaultCurrency  = "USD"
	defaultCondition = "near_mint"
)

type Handler struct {
	repo  Repository
	newID func() string
}

func NewHandler(repo Repository) *Handler {
	return &Handler{
		repo:  repo,
		newID: func() string { return utils.NewID("listing") },
	}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/marketplace", h.list)
	protected.POST("/marketplace", h.create)
	protected.DELETE("/marketplace/:listingId", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	params := ListParams{
		Game:   strings.TrimSpace(c.Query("game")),
		Limit:  queryInt(c, "limit", defaultLimit),
		Offset: queryInt(c, "offset", 0),
	}
	switch {
	case params.Limit <= 0:
		params.Limit = defaultLimit
	case params.Limit > maxLimit:
		params.Limit = maxLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	listings, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		logger.Error("get marketplace failed", map[string]any{
			"game":  params.Game,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if listings == nil {
		listings = []Listing{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"listings": listings,
	})
}

type createListingRequest struct {
	CardID      string          `json:"cardId"`
	Game        string          `json:"game"`
	CardData    json.RawMessage `json:"cardData"`
	Price       float64         `json:"price"`
	Currency    string          `json:"currency"`
	Condition   string          `json:"condition"`
	Foil        bool            `json:"foil"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description"`
}

func (r createListingRequest) valid() bool {
	data := bytes.TrimSpace(r.CardData)
	return r.CardID != "" &&
		r.Game != "" &&
		len(data) > 0 && !bytes.Equal(data, []byte("null")) &&
		r.Price > 0
}

func (h *Handler) create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	listing := NewListing{
		ListingID:   h.newID(),
		UserID:      user.UserID,
		CardID:      req.CardID,
		Game:        req.Game,
		CardData:    req.CardData,
		Price:       req.Price,
		Currency:    req.Currency,
		Condition:   req.Condition,
		Foil:        req.Foil,
		Quantity:    req.Quantity,
		Description: req.Description,
	}
	if listing.Currency == "" {
		listing.Currency = defaultCurrency
	}
	if listing.Condition == "" {
		listing.Condition = defaultCondition
	}
	if listing.Quantity <= 0 {
		listing.Quantity = 1
	}

	if err := h.repo.Create(c.Request.Context(), listing); err != nil {
		logger.Error("create listing failed", map[string]any{
			"user_id": user.UserID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"listingId": listing.ListingID,
	})
}

func (h *Handler) delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	listingID := c.Param("listingId")
	ctx := c.Request.Context()

	owner, err := h.repo.Owner(ctx, listingID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	if err != nil {
		logger.Error("delete listing lookup failed", map[string]any{
			"listing_id": listingID,
			"error":      err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if owner != user.UserID && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this listing"})
		return
	}

	if err := h.repo.Delete(ctx, listingID); err != nil {
		logger.Error("delete listing failed", map[string]any{
			"listing_id": listingID,
			"error":      err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

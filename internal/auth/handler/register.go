package handler

import (
	"errors"
	"net/http"
	"strings"

	"hatake-api/internal/auth/credentials"
	"hatake-api/internal/logger"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	u, err := h.credentialService.Register(
		c.Request.Context(),
		req.Email,
		req.Password,
		req.Name,
	)

	switch {
	case err == nil:
	case errors.Is(err, credentials.ErrAlreadyRegistered):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		return
	case errors.Is(err, credentials.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	default:
		logger.Error("signup failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.respondWithSession(c, u)
}

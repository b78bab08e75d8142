package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"phantom-gateway/internal/auth"
	"phantom-gateway/internal/logger"
	"phantom-gateway/internal/session"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for an identity-provider token pair, hides
// the pair behind a fresh phantom token, and hands the client only the
// phantom token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	pair, err := h.kc.PasswordLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		logger.Error("login failed upstream", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	claims, err := auth.DecodeUnverified(pair.AccessToken)
	if err != nil || claims.Subject == "" {
		logger.Error("issued access token undecodable", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	ttl := time.Duration(pair.RefreshExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = h.defaultTTL
	}

	phantomToken, err := h.sessions.Create(
		c.Request.Context(),
		claims.Subject,
		session.Record{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		},
		ttl,
	)
	if err != nil {
		logger.Error("failed to persist session", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	session.SetCookie(c.Writer, phantomToken, time.Now().Add(ttl), h.cookieOpts)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"session_id": phantomToken,
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"phantom-gateway/internal/keycloak"
	"phantom-gateway/internal/logger"
)

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup registers the user with the identity provider and triggers a
// verification email. All user state lives upstream.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	ctx := c.Request.Context()

	adminToken, err := h.kc.AdminToken(ctx)
	if err != nil {
		logger.Error("failed to get admin token", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create the user"})
		return
	}

	userID, err := h.kc.CreateUser(ctx, adminToken, req.Username, req.Email, req.Password)
	if err != nil {
		logger.Error("failed to create user", map[string]any{
			"username": req.Username,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create the user"})
		return
	}

	redirectURI := h.baseHostname + "/auth/login?verified=true"
	if err := h.kc.TriggerEmailAction(ctx, adminToken, userID, keycloak.ActionVerifyEmail, redirectURI); err != nil {
		logger.Error("failed to send verification email", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create the user"})
		return
	}

	logger.Info("user created", map[string]any{"user_id": userID})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully. Verification email sent.",
		"user_id": userID,
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"phantom-gateway/internal/keycloak"
	"phantom-gateway/internal/logger"
)

type passwordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// RequestPasswordReset asks the identity provider to email the user an
// UPDATE_PASSWORD link.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	ctx := c.Request.Context()

	adminToken, err := h.kc.AdminToken(ctx)
	if err != nil {
		logger.Error("failed to get admin token", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to request password reset"})
		return
	}

	userID, err := h.kc.UserIDByEmail(ctx, adminToken, req.Email)
	if err != nil {
		logger.Error("user lookup failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to request password reset"})
		return
	}
	if userID == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "User with this email not found"})
		return
	}

	redirectURI := h.baseHostname + "/auth/login?password_reset=true"
	if err := h.kc.TriggerEmailAction(ctx, adminToken, userID, keycloak.ActionUpdatePassword, redirectURI); err != nil {
		logger.Error("failed to send password reset email", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to request password reset"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

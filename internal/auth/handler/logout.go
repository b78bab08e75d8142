package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"phantom-gateway/internal/logger"
	"phantom-gateway/internal/middleware"
	"phantom-gateway/internal/session"
)

// Logout deletes the caller's session record and best-effort revokes the
// cached refresh token upstream. The phantom token comes from the
// resolved identity, not the request: the gateway already swapped the
// Authorization header for the real access token. An anonymous request
// still gets 200 so a client with no session can always "log out".
func (h *Handler) Logout(c *gin.Context) {

	if identity, ok := middleware.IdentityFromContext(c.Request.Context()); ok {
		ctx := c.Request.Context()

		if err := h.kc.RevokeRefreshToken(ctx, identity.RefreshToken); err != nil {
			logger.Warn("upstream refresh token revocation failed", map[string]any{
				"error": err.Error(),
			})
		}

		if err := h.sessions.Delete(ctx, identity.SessionID); err != nil {
			logger.Error("failed to delete session", map[string]any{"error": err.Error()})
		}
	}

	session.ClearCookie(c.Writer, h.cookieOpts)

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// LogoutAll revokes every session belonging to the authenticated user.
// Requires identity; registered behind GinRequireIdentity.
func (h *Handler) LogoutAll(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c.Request.Context())

	userID := identity.Claims.Subject
	if err := h.sessions.DeleteAll(c.Request.Context(), userID); err != nil {
		logger.Error("failed to delete user sessions", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to logout"})
		return
	}

	session.ClearCookie(c.Writer, h.cookieOpts)

	c.JSON(http.StatusOK, gin.H{"message": "All sessions logged out"})
}

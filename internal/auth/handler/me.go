package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"phantom-gateway/internal/middleware"
)

// Me returns the authenticated caller's profile as decoded from the
// live access token. No upstream call: the gateway already resolved the
// session.
func (h *Handler) Me(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c.Request.Context())
	claims := identity.Claims

	c.JSON(http.StatusOK, gin.H{
		"id":             claims.Subject,
		"email":          claims.Email,
		"email_verified": claims.EmailVerified,
		"username":       claims.PreferredUsername,
		"roles":          claims.Roles(),
	})
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"phantom-gateway/internal/keycloak"
	"phantom-gateway/internal/middleware"
	"phantom-gateway/internal/session"
)

type Handler struct {
	kc           *keycloak.Client
	sessions     *session.Manager
	verifier     keycloak.TokenVerifier
	baseHostname string
	cookieOpts   session.CookieOptions
	defaultTTL   time.Duration
}

func NewHandler(
	kc *keycloak.Client,
	sessions *session.Manager,
	verifier keycloak.TokenVerifier,
	baseHostname string,
	cookieOpts session.CookieOptions,
	defaultTTL time.Duration,
) *Handler {
	return &Handler{
		kc:           kc,
		sessions:     sessions,
		verifier:     verifier,
		baseHostname: baseHostname,
		cookieOpts:   cookieOpts,
		defaultTTL:   defaultTTL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	authGroup := r.Group("/auth")

	authGroup.POST("/login", h.Login)
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/logout", h.Logout)
	authGroup.POST("/password-reset/request", h.RequestPasswordReset)

	protected := authGroup.Group("")
	protected.Use(middleware.GinRequireIdentity())
	protected.POST("/logout-all", h.LogoutAll)
	protected.POST("/ping", h.Ping)

	userGroup := r.Group("/user")
	userGroup.Use(middleware.GinRequireIdentity())
	userGroup.GET("/me", h.Me)
}

// Ping validates the caller's live access token against the realm's
// published keys. The gateway itself trusts the session store; this
// route exists to check the two agree.
func (h *Handler) Ping(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c.Request.Context())

	subject, err := h.verifier.Verify(c.Request.Context(), identity.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": subject, "status": "valid"})
}

package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"phantom-gateway/internal/auth/handler"
	"phantom-gateway/internal/auth/resolver"
	"phantom-gateway/internal/config"
	"phantom-gateway/internal/keycloak"
	"phantom-gateway/internal/middleware"
	"phantom-gateway/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies (created once, shared by all requests)
	// ----------------------------

	kcClient, err := keycloak.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	verifier, err := keycloak.NewVerifier(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store := session.NewRedisStore(infra.Redis.Client)
	sessions := session.NewManager(store, cfg.UserIndexTTL)

	cookieOpts := session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}

	tokenResolver := resolver.New(sessions, kcClient, cfg.DefaultSessionTTL)
	gateway := middleware.NewGateway(tokenResolver, cookieOpts)

	authHandler := handler.NewHandler(
		kcClient,
		sessions,
		verifier,
		cfg.BaseHostname,
		cookieOpts,
		cfg.DefaultSessionTTL,
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.GinRequestID())
	router.Use(middleware.GinAccessLog())
	router.Use(middleware.GinGateway(gateway))

	// ----------------------------
	// Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.Redis.Close()
	}, nil
}

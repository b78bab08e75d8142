package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phantom-gateway/internal/auth"
	"phantom-gateway/internal/keycloak"
	"phantom-gateway/internal/logger"
	"phantom-gateway/internal/session"
)

// TokenExchanger is the slice of the identity-provider client the
// resolver needs.
type TokenExchanger interface {
	Refresh(ctx context.Context, refreshToken string) (*keycloak.TokenPair, error)
}

// Identity is a successfully resolved session: decoded claims plus the
// live access token to inject downstream. SessionID keeps the phantom
// token the caller presented; the Authorization header is rewritten
// before route handlers run, so this is their only way back to the
// session record.
type Identity struct {
	SessionID    string
	Claims       *auth.Claims
	AccessToken  string
	RefreshToken string
	Refreshed    bool
}

// Resolver turns an opaque phantom token into a live identity. It loads
// the session record, checks access-token liveness by unsigned decode,
// refreshes through the identity provider when expired, and persists
// the replacement pair. It holds no per-request state and is safe for
// concurrent use.
//
// Concurrent resolutions of the same phantom token during the expired
// window may race on the refresh; the provider invalidating the old
// refresh token serializes them, and the loser degrades to re-login.
type Resolver struct {
	sessions   *session.Manager
	exchanger  TokenExchanger
	defaultTTL time.Duration
	now        func() time.Time
}

func New(sessions *session.Manager, exchanger TokenExchanger, defaultTTL time.Duration) *Resolver {
	return &Resolver{
		sessions:   sessions,
		exchanger:  exchanger,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Resolve maps a phantom token to an identity or to exactly one of the
// sentinel rejections in package auth:
//
//	ErrNoToken          empty token; caller proceeds anonymous
//	ErrSessionNotFound  no record in the store
//	ErrSessionExpired   refresh rejected terminally; record deleted
//	ErrUpstream         transient failure; record untouched
func (r *Resolver) Resolve(ctx context.Context, phantomToken string) (*Identity, error) {

	if phantomToken == "" {
		return nil, auth.ErrNoToken
	}

	rec, err := r.sessions.Load(ctx, phantomToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrUpstream, err)
	}
	if rec == nil {
		return nil, auth.ErrSessionNotFound
	}

	claims, decodeErr := auth.DecodeUnverified(rec.AccessToken)
	if decodeErr == nil && !claims.Expired(r.now()) {
		return &Identity{
			SessionID:    phantomToken,
			Claims:       claims,
			AccessToken:  rec.AccessToken,
			RefreshToken: rec.RefreshToken,
		}, nil
	}

	// Expired (or undecodable) access token: the refresh grant is the
	// sole source of truth for the replacement pair.
	pair, err := r.exchanger.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshInvalid) {
			if delErr := r.sessions.Delete(ctx, phantomToken); delErr != nil {
				logger.Error("failed to delete invalid session", map[string]any{
					"error": delErr.Error(),
				})
			}
			return nil, auth.ErrSessionExpired
		}
		if errors.Is(err, auth.ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", auth.ErrUpstream, err)
	}

	rec.AccessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		rec.RefreshToken = pair.RefreshToken
	}

	ttl := time.Duration(pair.RefreshExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	if err := r.sessions.Save(ctx, phantomToken, *rec, ttl); err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrUpstream, err)
	}

	claims, err = auth.DecodeUnverified(rec.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: refreshed token undecodable: %w", auth.ErrUpstream, err)
	}

	return &Identity{
		SessionID:    phantomToken,
		Claims:       claims,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		Refreshed:    true,
	}, nil
}

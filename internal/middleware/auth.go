package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"phantom-gateway/internal/auth"
	"phantom-gateway/internal/auth/resolver"
	"phantom-gateway/internal/logger"
	"phantom-gateway/internal/session"
)

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext extracts the resolved identity from context.
func IdentityFromContext(ctx context.Context) (*resolver.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*resolver.Identity)
	return id, ok
}

// Gateway is the phantom-token interception layer. It swaps the opaque
// session handle a client presents for the real bearer credential before
// anything downstream runs. Requests without a token pass through
// unauthenticated; route handlers that need identity reject those
// themselves.
type Gateway struct {
	Resolver   *resolver.Resolver
	CookieOpts session.CookieOptions
}

func NewGateway(res *resolver.Resolver, cookieOpts session.CookieOptions) *Gateway {
	return &Gateway{Resolver: res, CookieOpts: cookieOpts}
}

// extractToken prefers the session cookie and falls back to a Bearer
// Authorization header. fromCookie tells the rejection path whether a
// cookie needs clearing.
func extractToken(r *http.Request) (token string, fromCookie bool) {
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), false
	}

	return "", false
}

func (g *Gateway) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		phantomToken, fromCookie := extractToken(r)
		if phantomToken == "" {
			// Anonymous; the route handler decides whether it needs auth.
			next.ServeHTTP(w, r)
			return
		}

		identity, err := g.Resolver.Resolve(r.Context(), phantomToken)
		if err != nil {
			g.reject(w, r, err, fromCookie)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		r = r.WithContext(ctx)

		// Never forward a client-supplied bearer token; downstream only
		// ever sees the credential the resolver vouched for.
		r.Header.Set("Authorization", "Bearer "+identity.AccessToken)

		next.ServeHTTP(w, r)
	})
}

// reject shapes terminal and transient failures. Absent and expired
// sessions look identical externally so the keyspace cannot be probed.
func (g *Gateway) reject(w http.ResponseWriter, r *http.Request, err error, fromCookie bool) {
	switch {
	case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrSessionExpired):
		if fromCookie {
			session.ClearCookie(w, g.CookieOpts)
		}
		writeDetail(w, http.StatusUnauthorized, "Session expired or revoked")
	default:
		logger.Error("session resolution failed", map[string]any{
			"error": err.Error(),
			"path":  r.URL.Path,
		})
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

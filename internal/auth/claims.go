package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access-token claims the gateway reads. The
// token is decoded once at resolution time without signature
// verification: the provider verified it at issuance, and revocation is
// enforced by deleting the session, not by per-request crypto.
type Claims struct {
	jwt.RegisteredClaims

	Email             string      `json:"email"`
	EmailVerified     bool        `json:"email_verified"`
	PreferredUsername string      `json:"preferred_username"`
	RealmAccess       RealmAccess `json:"realm_access"`
}

type RealmAccess struct {
	Roles []string `json:"roles"`
}

// DecodeUnverified parses the access token's claims without checking
// the signature. A malformed token yields ErrClaimDecode.
func DecodeUnverified(accessToken string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClaimDecode, err)
	}
	return claims, nil
}

// Expired reports whether the exp claim is at or before now. A missing
// exp claim counts as expired, forcing a refresh attempt.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.After(now)
}

// Roles returns the realm roles, never nil.
func (c *Claims) Roles() []string {
	if c.RealmAccess.Roles == nil {
		return []string{}
	}
	return c.RealmAccess.Roles
}

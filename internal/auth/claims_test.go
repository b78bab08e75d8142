package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestDecodeUnverified(t *testing.T) {
	now := time.Now()
	raw := signedToken(t, jwt.MapClaims{
		"sub":                "user-123",
		"exp":                now.Add(time.Minute).Unix(),
		"email":              "user@example.com",
		"email_verified":     true,
		"preferred_username": "user123",
		"realm_access": map[string]any{
			"roles": []string{"offline_access", "uma_authorization"},
		},
	})

	claims, err := DecodeUnverified(raw)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.EmailVerified)
	assert.Equal(t, "user123", claims.PreferredUsername)
	assert.Equal(t, []string{"offline_access", "uma_authorization"}, claims.Roles())
	assert.False(t, claims.Expired(now))
}

func TestDecodeUnverified_IgnoresSignature(t *testing.T) {
	// The gateway checks liveness, not authenticity; a token signed with
	// an unknown key still decodes.
	raw := signedToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})

	claims, err := DecodeUnverified(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
}

func TestDecodeUnverified_Malformed(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := DecodeUnverified(raw)
		assert.ErrorIs(t, err, ErrClaimDecode, "input %q", raw)
	}
}

func TestClaims_Expired(t *testing.T) {
	now := time.Now()

	fresh := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}}
	assert.False(t, fresh.Expired(now))

	expired := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second)),
	}}
	assert.True(t, expired.Expired(now))

	// Zero grace skew: exp == now counts as expired.
	boundary := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now),
	}}
	assert.True(t, boundary.Expired(now))

	missing := &Claims{}
	assert.True(t, missing.Expired(now))
}

func TestClaims_RolesNeverNil(t *testing.T) {
	c := &Claims{}
	assert.NotNil(t, c.Roles())
	assert.Empty(t, c.Roles())
}

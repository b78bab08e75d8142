package keycloak

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phantom-gateway/internal/auth"
	"phantom-gateway/internal/config"
)

func testConfig(serverURL string) config.Config {
	return config.Config{
		KeycloakURL:          serverURL,
		KeycloakRealm:        "test",
		KeycloakClientID:     "gateway",
		KeycloakClientSecret: "secret",
		KeycloakUsername:     "admin",
		KeycloakPassword:     "admin-pass",
		KeycloakTimeout:      2 * time.Second,
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := New(testConfig(ts.URL))
	require.NoError(t, err)

	return client, ts
}

func writeTokenResponse(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func TestNew_MissingConfig(t *testing.T) {
	_, err := New(config.Config{})
	assert.Error(t, err)
}

func TestPasswordLogin(t *testing.T) {
	var gotGrant string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/realms/test/protocol/openid-connect/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotGrant = r.PostForm.Get("grant_type")

		writeTokenResponse(w, map[string]any{
			"access_token":       "new-at",
			"refresh_token":      "new-rt",
			"token_type":         "Bearer",
			"expires_in":         300,
			"refresh_expires_in": 1800,
		})
	}))

	pair, err := client.PasswordLogin(context.Background(), "alice", "pw")
	require.NoError(t, err)

	assert.Equal(t, "password", gotGrant)
	assert.Equal(t, "new-at", pair.AccessToken)
	assert.Equal(t, "new-rt", pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, 300, pair.ExpiresIn)
	assert.Equal(t, 1800, pair.RefreshExpiresIn)
}

func TestPasswordLogin_Rejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))

	_, err := client.PasswordLogin(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestPasswordLogin_UpstreamDown(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	cfg := testConfig(ts.URL)
	ts.Close() // connection refused from here on

	client, err := New(cfg)
	require.NoError(t, err)

	_, err = client.PasswordLogin(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, auth.ErrUpstream)
}

func TestRefresh(t *testing.T) {
	var gotGrant, gotRefreshToken string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrant = r.PostForm.Get("grant_type")
		gotRefreshToken = r.PostForm.Get("refresh_token")

		writeTokenResponse(w, map[string]any{
			"access_token":       "rotated-at",
			"refresh_token":      "rotated-rt",
			"token_type":         "Bearer",
			"expires_in":         300,
			"refresh_expires_in": 1800,
		})
	}))

	pair, err := client.Refresh(context.Background(), "old-rt")
	require.NoError(t, err)

	assert.Equal(t, "refresh_token", gotGrant)
	assert.Equal(t, "old-rt", gotRefreshToken)
	assert.Equal(t, "rotated-at", pair.AccessToken)
	assert.Equal(t, "rotated-rt", pair.RefreshToken)
	assert.Equal(t, 1800, pair.RefreshExpiresIn)
}

func TestRefresh_KeepsOldRefreshTokenWhenOmitted(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeTokenResponse(w, map[string]any{
			"access_token": "rotated-at",
			"token_type":   "Bearer",
			"expires_in":   300,
		})
	}))

	pair, err := client.Refresh(context.Background(), "old-rt")
	require.NoError(t, err)

	assert.Equal(t, "rotated-at", pair.AccessToken)
	assert.Equal(t, "old-rt", pair.RefreshToken)
	assert.Zero(t, pair.RefreshExpiresIn)
}

func TestRefresh_Invalid(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))

	_, err := client.Refresh(context.Background(), "revoked-rt")
	assert.ErrorIs(t, err, auth.ErrRefreshInvalid)
	assert.NotErrorIs(t, err, auth.ErrUpstream)
}

func TestRefresh_TimeoutIsUpstreamNotInvalid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeTokenResponse(w, map[string]any{"access_token": "late", "token_type": "Bearer"})
	}))
	t.Cleanup(ts.Close)

	cfg := testConfig(ts.URL)
	cfg.KeycloakTimeout = 50 * time.Millisecond

	client, err := New(cfg)
	require.NoError(t, err)

	_, err = client.Refresh(context.Background(), "rt")
	assert.ErrorIs(t, err, auth.ErrUpstream)
	assert.NotErrorIs(t, err, auth.ErrRefreshInvalid)
}

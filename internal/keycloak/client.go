package keycloak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"phantom-gateway/internal/auth"
	"phantom-gateway/internal/config"
)

// TokenPair is the token endpoint's response, field names as Keycloak
// reports them.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
}

// Client performs grants and admin calls against a Keycloak realm. It is
// stateless and safe for concurrent use; construct one at startup and
// share it.
type Client struct {
	cfg         config.Config
	oauthConfig *oauth2.Config
	httpClient  *http.Client
}

func New(cfg config.Config) (*Client, error) {

	if cfg.KeycloakURL == "" || cfg.KeycloakRealm == "" || cfg.KeycloakClientID == "" {
		return nil, errors.New("keycloak config missing required fields")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.KeycloakClientID,
		ClientSecret: cfg.KeycloakClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: cfg.TokenURL(),
		},
		Scopes: []string{"openid", "profile", "email"},
	}

	return &Client{
		cfg:         cfg,
		oauthConfig: oauthCfg,
		httpClient:  &http.Client{Timeout: cfg.KeycloakTimeout},
	}, nil
}

// oauthContext routes oauth2's token requests through the shared,
// timeout-bounded HTTP client.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// PasswordLogin performs a password grant and returns the issued token
// pair. A non-200 from the token endpoint yields ErrInvalidCredentials;
// transport failures and timeouts yield ErrUpstream.
func (c *Client) PasswordLogin(ctx context.Context, username, password string) (*TokenPair, error) {
	tok, err := c.oauthConfig.PasswordCredentialsToken(c.oauthContext(ctx), username, password)
	if err != nil {
		return nil, classifyGrantErr(err, auth.ErrInvalidCredentials)
	}
	return pairFromToken(tok), nil
}

// Refresh performs a refresh grant. When the response omits
// refresh_token, the returned pair carries the one passed in. A non-200
// yields ErrRefreshInvalid; transport failures yield ErrUpstream, which
// callers must not treat as a reason to drop the session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	src := c.oauthConfig.TokenSource(c.oauthContext(ctx), &oauth2.Token{
		RefreshToken: refreshToken,
	})
	tok, err := src.Token()
	if err != nil {
		return nil, classifyGrantErr(err, auth.ErrRefreshInvalid)
	}
	return pairFromToken(tok), nil
}

func classifyGrantErr(err error, rejected error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: token endpoint returned %d", rejected, retrieveErr.Response.StatusCode)
	}
	return fmt.Errorf("%w: %w", auth.ErrUpstream, err)
}

func pairFromToken(tok *oauth2.Token) *TokenPair {
	return &TokenPair{
		AccessToken:      tok.AccessToken,
		RefreshToken:     tok.RefreshToken,
		TokenType:        tok.TokenType,
		ExpiresIn:        extraInt(tok, "expires_in"),
		RefreshExpiresIn: extraInt(tok, "refresh_expires_in"),
	}
}

func extraInt(tok *oauth2.Token, key string) int {
	switch v := tok.Extra(key).(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	}
	return 0
}

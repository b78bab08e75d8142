package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"phantom-gateway/internal/auth"
)

// EmailAction names Keycloak's execute-actions-email actions.
const (
	ActionVerifyEmail    = "VERIFY_EMAIL"
	ActionUpdatePassword = "UPDATE_PASSWORD"
	ActionUpdateEmail    = "UPDATE_EMAIL"
)

// AdminToken obtains a service-account access token via the password
// grant for the configured admin user.
func (c *Client) AdminToken(ctx context.Context) (string, error) {
	pair, err := c.PasswordLogin(ctx, c.cfg.KeycloakUsername, c.cfg.KeycloakPassword)
	if err != nil {
		return "", fmt.Errorf("keycloak: failed to get admin token: %w", err)
	}
	return pair.AccessToken, nil
}

// CreateUser registers a new user with a permanent password and a
// pending VERIFY_EMAIL action, returning the new user's id from the
// Location header.
func (c *Client) CreateUser(ctx context.Context, adminToken, username, email, password string) (string, error) {

	body := map[string]any{
		"username": username,
		"email":    email,
		"enabled":  true,
		"credentials": []map[string]any{
			{"type": "password", "value": password, "temporary": false},
		},
		"requiredActions": []string{ActionVerifyEmail},
	}

	resp, err := c.doJSON(ctx, http.MethodPost, c.cfg.UsersURL(), adminToken, body, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return "", fmt.Errorf("keycloak: create user returned %d", resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("keycloak: create user response missing Location header")
	}

	parts := strings.Split(location, "/")
	return parts[len(parts)-1], nil
}

// UserIDByEmail looks up a user by exact email. Returns "" with no error
// when no user matches.
func (c *Client) UserIDByEmail(ctx context.Context, adminToken, email string) (string, error) {

	query := url.Values{}
	query.Set("email", email)
	query.Set("exact", "true")

	resp, err := c.doJSON(ctx, http.MethodGet, c.cfg.UsersURL(), adminToken, nil, query)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("keycloak: user lookup returned %d", resp.StatusCode)
	}

	var users []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return "", fmt.Errorf("keycloak: failed to decode user lookup: %w", err)
	}

	if len(users) == 0 {
		return "", nil
	}
	return users[0].ID, nil
}

// TriggerEmailAction asks Keycloak to email the user a link executing
// the given action. redirectURI may be empty.
func (c *Client) TriggerEmailAction(ctx context.Context, adminToken, userID, action, redirectURI string) error {

	query := url.Values{}
	query.Set("client_id", c.cfg.KeycloakClientID)
	if redirectURI != "" {
		query.Set("redirectUri", redirectURI)
	}

	resp, err := c.doJSON(ctx, http.MethodPut, c.cfg.EmailActionsURL(userID), adminToken, []string{action}, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("keycloak: email action returned %d", resp.StatusCode)
	}
	return nil
}

// ResetPassword sets a new permanent password for the user.
func (c *Client) ResetPassword(ctx context.Context, adminToken, userID, newPassword string) error {

	body := map[string]any{
		"type":      "password",
		"value":     newPassword,
		"temporary": false,
	}

	resp, err := c.doJSON(ctx, http.MethodPut, c.cfg.ResetPasswordURL(userID), adminToken, body, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("keycloak: reset password returned %d", resp.StatusCode)
	}
	return nil
}

// UpdateEmail replaces the user's email address, marking it verified.
func (c *Client) UpdateEmail(ctx context.Context, adminToken, userID, newEmail string) error {

	body := map[string]any{
		"email":         newEmail,
		"emailVerified": true,
	}

	resp, err := c.doJSON(ctx, http.MethodPut, c.cfg.UserURL(userID), adminToken, body, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("keycloak: update email returned %d", resp.StatusCode)
	}
	return nil
}

// RevokeRefreshToken invalidates a refresh token at the provider's
// logout endpoint.
func (c *Client) RevokeRefreshToken(ctx context.Context, refreshToken string) error {

	form := url.Values{}
	form.Set("client_id", c.cfg.KeycloakClientID)
	form.Set("client_secret", c.cfg.KeycloakClientSecret)
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.LogoutURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", auth.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("keycloak: logout returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, rawURL, token string, body any, query url.Values) (*http.Response, error) {

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	if len(query) > 0 {
		rawURL = rawURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrUpstream, err)
	}
	return resp, nil
}

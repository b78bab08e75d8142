package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeycloakURLs(t *testing.T) {
	cfg := Config{
		KeycloakURL:   "http://kc:8081",
		KeycloakRealm: "myrealm",
	}

	assert.Equal(t, "http://kc:8081/realms/myrealm", cfg.Issuer())
	assert.Equal(t, "http://kc:8081/realms/myrealm/protocol/openid-connect/token", cfg.TokenURL())
	assert.Equal(t, "http://kc:8081/realms/myrealm/protocol/openid-connect/logout", cfg.LogoutURL())
	assert.Equal(t, "http://kc:8081/admin/realms/myrealm/users", cfg.UsersURL())
	assert.Equal(t, "http://kc:8081/admin/realms/myrealm/users/u1", cfg.UserURL("u1"))
	assert.Equal(t, "http://kc:8081/admin/realms/myrealm/users/u1/execute-actions-email", cfg.EmailActionsURL("u1"))
	assert.Equal(t, "http://kc:8081/admin/realms/myrealm/users/u1/reset-password", cfg.ResetPasswordURL("u1"))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DEFAULT_SESSION_TTL_SECONDS", "")

	cfg := Load()

	assert.Equal(t, "8000", cfg.AppPort)
	assert.Positive(t, cfg.DefaultSessionTTL)
	assert.Positive(t, cfg.UserIndexTTL)
	assert.Positive(t, cfg.KeycloakTimeout)
	assert.Positive(t, cfg.RedisTimeout)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort      string
	BaseHostname string

	RedisAddr     string
	RedisPassword string
	RedisTimeout  time.Duration

	KeycloakURL          string
	KeycloakRealm        string
	KeycloakClientID     string
	KeycloakClientSecret string
	KeycloakUsername     string
	KeycloakPassword     string
	KeycloakTimeout      time.Duration

	// Applied when the provider omits refresh_expires_in.
	DefaultSessionTTL time.Duration

	// Ceiling for the per-user session index key.
	UserIndexTTL time.Duration
}

func Load() Config {

	cfg := Config{

		AppPort:      getEnv("APP_PORT", "8000"),
		BaseHostname: os.Getenv("BASE_HOSTNAME"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisTimeout:  getEnvSeconds("REDIS_TIMEOUT_SECONDS", 2*time.Second),

		KeycloakURL:          os.Getenv("KEYCLOAK_URL"),
		KeycloakRealm:        os.Getenv("KEYCLOAK_REALM"),
		KeycloakClientID:     os.Getenv("AUTH_CLIENT_ID"),
		KeycloakClientSecret: os.Getenv("AUTH_CLIENT_SECRET"),
		KeycloakUsername:     os.Getenv("KEYCLOAK_USERNAME"),
		KeycloakPassword:     os.Getenv("KEYCLOAK_PASSWORD"),
		KeycloakTimeout:      getEnvSeconds("KEYCLOAK_TIMEOUT_SECONDS", 10*time.Second),

		DefaultSessionTTL: getEnvSeconds("DEFAULT_SESSION_TTL_SECONDS", 1800*time.Second),
		UserIndexTTL:      getEnvSeconds("USER_INDEX_TTL_SECONDS", 30*24*time.Hour),
	}

	return cfg

}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

// Issuer is the realm issuer URL, e.g.
// http://localhost:8081/realms/myrealm
func (c Config) Issuer() string {
	return fmt.Sprintf("%s/realms/%s", c.KeycloakURL, c.KeycloakRealm)
}

func (c Config) TokenURL() string {
	return c.Issuer() + "/protocol/openid-connect/token"
}

func (c Config) LogoutURL() string {
	return c.Issuer() + "/protocol/openid-connect/logout"
}

func (c Config) UsersURL() string {
	return fmt.Sprintf("%s/admin/realms/%s/users", c.KeycloakURL, c.KeycloakRealm)
}

func (c Config) UserURL(userID string) string {
	return c.UsersURL() + "/" + userID
}

func (c Config) EmailActionsURL(userID string) string {
	return c.UserURL(userID) + "/execute-actions-email"
}

func (c Config) ResetPasswordURL(userID string) string {
	return c.UserURL(userID) + "/reset-password"
}

package keycloak

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"phantom-gateway/internal/config"
)

// TokenVerifier checks an access token's signature against the realm's
// published keys. The gateway middleware deliberately does NOT use it;
// it backs the diagnostic token-validation route only.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (subject string, err error)
}

type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the realm's JWKS endpoint and builds a verifier.
// Audience is not enforced; Keycloak access tokens commonly carry
// aud=account.
func NewVerifier(ctx context.Context, cfg config.Config) (*Verifier, error) {

	provider, err := oidc.NewProvider(ctx, cfg.Issuer())
	if err != nil {
		return nil, fmt.Errorf("keycloak: failed to init oidc provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID:          cfg.KeycloakClientID,
		SkipClientIDCheck: true,
	})

	return &Verifier{verifier: verifier}, nil
}

func (v *Verifier) Verify(ctx context.Context, rawToken string) (string, error) {
	tok, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", fmt.Errorf("keycloak: token verification failed: %w", err)
	}
	return tok.Subject, nil
}

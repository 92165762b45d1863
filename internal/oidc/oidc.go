package oidc

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/identity"
)

// Verifier validates ID tokens issued by a Keycloak realm.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// IssuerURL joins the Keycloak base URL and realm. An empty realm means url
// already is the issuer (older deployments expose the realm path directly).
func IssuerURL(url, realm string) string {
	if realm == "" {
		return url
	}
	return strings.TrimRight(url, "/") + "/realms/" + realm
}

// NewVerifier discovers the provider at issuer.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (v *Verifier) Verify(ctx context.Context, raw string) (identity.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}

// Package identity turns a bearer credential into an authenticated Identity.
//
// A Gate runs a Verifier (HS256 JWT, OIDC or, in integration mode, the
// insecure payload parser), rejects revoked tokens and resolves the username
// claim. It never touches content documents.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ndsf/awesome-douban/backend/go-services/internal/apperr"
)

// Identity is the authenticated caller.
type Identity struct {
	Username string `json:"username"`
}

// Token is a verified token that can expose its claims.
type Token interface {
	Claims(v interface{}) error
}

// Verifier checks a raw token's signature and validity.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// RevocationChecker reports whether a raw token was revoked before expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, raw string) (bool, error)
}

// usernameClaims are tried in order.
var usernameClaims = []string{"preferred_username", "username", "sub"}

type Gate struct {
	verifier Verifier
	revoked  RevocationChecker
}

// NewGate builds a gate. revoked may be nil.
func NewGate(v Verifier, revoked RevocationChecker) *Gate {
	return &Gate{verifier: v, revoked: revoked}
}

// Authenticate verifies credential and returns the caller's identity. A bad,
// expired or revoked credential is an apperr Unauthenticated error; a failing
// revocation store is an internal error.
func (g *Gate) Authenticate(ctx context.Context, credential string) (Identity, error) {
	raw := strings.TrimSpace(credential)
	if raw == "" {
		return Identity{}, apperr.UnauthenticatedError(errors.New("missing credential"))
	}
	if g == nil || g.verifier == nil {
		return Identity{}, apperr.UnauthenticatedError(errors.New("authentication not configured"))
	}
	tok, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, apperr.UnauthenticatedError(err)
	}
	// only verified tokens reach the revocation store
	if g.revoked != nil {
		revoked, err := g.revoked.IsRevoked(ctx, raw)
		if err != nil {
			return Identity{}, fmt.Errorf("revocation check: %w", err)
		}
		if revoked {
			return Identity{}, apperr.UnauthenticatedError(errors.New("token revoked"))
		}
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		return Identity{}, apperr.UnauthenticatedError(err)
	}
	for _, k := range usernameClaims {
		if v, ok := claims[k].(string); ok && v != "" {
			return Identity{Username: v}, nil
		}
	}
	return Identity{}, apperr.UnauthenticatedError(errors.New("token carries no username"))
}

type contextKey struct{}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok && id.Username != ""
}

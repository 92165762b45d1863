package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/config"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/identity"
)

// GenerateAccessToken creates a signed HS256 access token for username.
// Used by cmd/devtoken and tests; production tokens come from the identity provider.
func GenerateAccessToken(cfg *config.Config, username string, ttl time.Duration) (string, error) {
	if cfg.JWT.Secret == "" {
		return "", errors.New("JWT secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":                username,
		"preferred_username": username,
		"iat":                now.Unix(),
		"exp":                now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// Verifier validates HS256 tokens signed with the shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(_ context.Context, raw string) (identity.Token, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("JWT secret not configured")
	}
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return mapToken(claims), nil
}

type mapToken jwt.MapClaims

func (t mapToken) Claims(v interface{}) error {
	b, err := json.Marshal(map[string]interface{}(t))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

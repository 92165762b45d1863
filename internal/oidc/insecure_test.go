package oidc

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeJWT(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"RS256"}`)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestInsecureVerifierParsesClaims(t *testing.T) {
	tok, err := NewInsecureVerifier().Verify(context.Background(), fakeJWT(`{"preferred_username":"alice","exp":9999999999}`))
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "alice", claims["preferred_username"])
}

func TestInsecureVerifierRejects(t *testing.T) {
	v := NewInsecureVerifier()
	_, err := v.Verify(context.Background(), "garbage")
	require.Error(t, err)
	_, err = v.Verify(context.Background(), fakeJWT(`{"sub":"bob","exp":1}`))
	require.Error(t, err)
	_, err = v.Verify(context.Background(), "a.!!!.c")
	require.Error(t, err)
}

func TestIssuerURL(t *testing.T) {
	require.Equal(t, "http://kc:8080/realms/douban", IssuerURL("http://kc:8080/", "douban"))
	require.Equal(t, "http://kc:8080/realms/douban", IssuerURL("http://kc:8080/realms/douban", ""))
}

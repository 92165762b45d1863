package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/identity"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeToken implements identity.Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements identity.Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (identity.Token, error) {
	if raw == "goodtoken" || raw == "black-token" {
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "preferred_username": "alice"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func newGate() *identity.Gate { return identity.NewGate(&fakeVerifier{}, nil) }

func TestAuthMiddleware_NoHeader(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw := httptest.NewRecorder()

	called := false
	g.GET("/", AuthMiddleware(newGate()), func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.False(t, called)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	for _, h := range []string{"BadHeader", "Basic abc", "Bearer ", "Bearer badtoken"} {
		g := gin.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", h)
		rw := httptest.NewRecorder()

		g.GET("/", AuthMiddleware(newGate()), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		g.ServeHTTP(rw, req)

		require.Equal(t, http.StatusUnauthorized, rw.Code, h)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(newGate()), func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		require.True(t, ok)
		fromCtx, ok := identity.FromContext(c.Request.Context())
		require.True(t, ok)
		require.Equal(t, id, fromCtx)
		c.JSON(http.StatusOK, id)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "alice", got["username"])
}

func TestAuthMiddleware_RejectsRevokedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	revoked := identity.NewRedisRevocationList(client, "")

	token := "black-token"
	require.NoError(t, revoked.Revoke(context.Background(), token, 5*time.Second))

	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(identity.NewGate(&fakeVerifier{}, revoked)), func(c *gin.Context) { c.Status(http.StatusOK) })
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_RevocationStoreDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	gate := identity.NewGate(&fakeVerifier{}, identity.NewRedisRevocationList(client, ""))
	addr := m.Addr()
	m.Close()

	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(gate), func(c *gin.Context) { c.Status(http.StatusOK) })
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusInternalServerError, rw.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	require.Equal(t, "authentication unavailable", body["error"])
	require.NotContains(t, body, "details")
	require.NotContains(t, rw.Body.String(), addr)
}

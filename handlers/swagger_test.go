package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSwaggerEndpoints(t *testing.T) {
	g := gin.New()
	RegisterSwagger(g)

	req := httptest.NewRequest("GET", "/swagger/index.html", nil)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "swagger-ui")

	req2 := httptest.NewRequest("GET", "/swagger/doc.json", nil)
	w2 := httptest.NewRecorder()
	g.ServeHTTP(w2, req2)
	require.Equal(t, 200, w2.Code)
	require.Contains(t, w2.Body.String(), "openapi")
	require.Equal(t, "application/json; charset=utf-8", w2.Header().Get("Content-Type"))

	var doc struct {
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &doc))
	require.Contains(t, doc.Paths["/api/v1/{kind}/{id}/comments"], "post")
	require.Contains(t, doc.Paths["/api/v1/{kind}/{id}/comments/{commentId}"], "delete")
	require.Contains(t, doc.Paths["/api/v1/{kind}/{id}/likes"], "post")
	require.Contains(t, doc.Paths["/api/v1/feed/{username}"], "get")
}

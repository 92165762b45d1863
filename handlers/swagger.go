package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers Swagger/OpenAPI endpoints for the content API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>douban-interactions Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// OpenAPI document for the content API.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "douban-interactions", "version": "v0.1.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "parameters": {
      "kind": { "name": "kind", "in": "path", "required": true, "schema": { "type": "string", "enum": ["books", "movies", "groups"] } },
      "id": { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }
    },
    "schemas": {
      "Comment": { "type": "object", "properties": { "id": {"type":"string"}, "title": {"type":"string"}, "body": {"type":"string"}, "username": {"type":"string"}, "createdAt": {"type":"string","format":"date-time"} } },
      "Like": { "type": "object", "properties": { "username": {"type":"string"}, "createdAt": {"type":"string","format":"date-time"} } },
      "Document": { "type": "object", "properties": { "id": {"type":"string"}, "kind": {"type":"string"}, "body": {"type":"string"}, "username": {"type":"string"}, "avatar": {"type":"string"}, "createdAt": {"type":"string","format":"date-time"}, "version": {"type":"integer"}, "comments": {"type":"array","items":{"$ref":"#/components/schemas/Comment"}}, "likes": {"type":"array","items":{"$ref":"#/components/schemas/Like"}}, "commentCount": {"type":"integer"}, "likeCount": {"type":"integer"} } },
      "Error": { "type": "object", "properties": { "error": {"type":"string"}, "field": {"type":"string"} } }
    }
  },
  "paths": {
    "/api/v1/{kind}": {
      "get": { "summary": "List documents of a kind", "parameters": [{"$ref":"#/components/parameters/kind"}], "responses": { "200": { "description": "documents" }, "404": { "description": "unknown kind" } } }
    },
    "/api/v1/{kind}/{id}": {
      "get": { "summary": "Get a document", "parameters": [{"$ref":"#/components/parameters/kind"}, {"$ref":"#/components/parameters/id"}], "responses": { "200": { "description": "document" }, "404": { "description": "document not found" } } }
    },
    "/api/v1/{kind}/{id}/comments": {
      "post": {
        "summary": "Comment on a review or post to a group",
        "security": [{"bearer": []}],
        "parameters": [{"$ref":"#/components/parameters/kind"}, {"$ref":"#/components/parameters/id"}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"body":{"type":"string"}},"required":["body"]}}}},
        "responses": { "201": { "description": "updated document" }, "400": { "description": "empty comment body" }, "401": { "description": "unauthenticated" }, "404": { "description": "document not found" }, "409": { "description": "concurrent modification" } }
      }
    },
    "/api/v1/{kind}/{id}/comments/{commentId}": {
      "delete": {
        "summary": "Delete own comment",
        "security": [{"bearer": []}],
        "parameters": [{"$ref":"#/components/parameters/kind"}, {"$ref":"#/components/parameters/id"}, {"name":"commentId","in":"path","required":true,"schema":{"type":"string"}}],
        "responses": { "200": { "description": "updated document" }, "401": { "description": "unauthenticated" }, "403": { "description": "not comment owner" }, "404": { "description": "document or comment not found" }, "409": { "description": "concurrent modification" } }
      }
    },
    "/api/v1/{kind}/{id}/likes": {
      "post": {
        "summary": "Toggle like; on groups, join or leave",
        "security": [{"bearer": []}],
        "parameters": [{"$ref":"#/components/parameters/kind"}, {"$ref":"#/components/parameters/id"}],
        "responses": { "200": { "description": "updated document" }, "401": { "description": "unauthenticated" }, "404": { "description": "document not found" }, "409": { "description": "concurrent modification" } }
      }
    },
    "/api/v1/feed/{username}": {
      "get": {
        "summary": "Activity feed of a user",
        "parameters": [{"name":"username","in":"path","required":true,"schema":{"type":"string"}}, {"name":"timeline","in":"query","schema":{"type":"boolean"}}],
        "responses": { "200": { "description": "books, movies, groups, joinedGroups and optional timeline" } }
      }
    },
    "/api/v1/me": {
      "get": { "summary": "Authenticated identity", "security": [{"bearer": []}], "responses": { "200": { "description": "identity" }, "401": { "description": "unauthenticated" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`

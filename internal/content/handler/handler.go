// Package handler exposes the interaction engine and the feed over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/apperr"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content/service"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/feed"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/logger"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/metrics"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/middleware"
)

type Handler struct {
	engine  *service.Engine
	feed    *feed.Service
	retries int
}

// New returns a handler. retries is how many times a mutation is re-run after
// a version conflict before the conflict is returned to the client.
func New(engine *service.Engine, feeds *feed.Service, retries int) *Handler {
	if retries < 0 {
		retries = 0
	}
	return &Handler{engine: engine, feed: feeds, retries: retries}
}

// Register mounts the content routes under /api/v1. protect runs before every
// mutating route and must include middleware.AuthMiddleware.
func (h *Handler) Register(r *gin.Engine, protect ...gin.HandlerFunc) {
	api := r.Group("/api/v1")
	api.GET("/feed/:username", h.getFeed)
	api.GET("/:kind", h.listDocuments)
	api.GET("/:kind/:id", h.getDocument)

	authed := api.Group("", protect...)
	authed.GET("/me", h.me)
	authed.POST("/:kind/:id/comments", h.createComment)
	authed.DELETE("/:kind/:id/comments/:commentId", h.deleteComment)
	authed.POST("/:kind/:id/likes", h.toggleLike)
}

type commentRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *Handler) createComment(c *gin.Context) {
	ref, ok := refParam(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	who, _ := middleware.CurrentIdentity(c)
	h.mutate(c, "create_comment", http.StatusCreated, func(ctx context.Context) (*content.Document, error) {
		return h.engine.CreateComment(ctx, ref, req.Title, req.Body, who)
	})
}

func (h *Handler) deleteComment(c *gin.Context) {
	ref, ok := refParam(c)
	if !ok {
		return
	}
	commentID := c.Param("commentId")
	who, _ := middleware.CurrentIdentity(c)
	h.mutate(c, "delete_comment", http.StatusOK, func(ctx context.Context) (*content.Document, error) {
		return h.engine.DeleteComment(ctx, ref, commentID, who)
	})
}

// toggleLike likes or unlikes a review; on a group it joins or leaves.
func (h *Handler) toggleLike(c *gin.Context) {
	ref, ok := refParam(c)
	if !ok {
		return
	}
	who, _ := middleware.CurrentIdentity(c)
	h.mutate(c, "toggle_like", http.StatusOK, func(ctx context.Context) (*content.Document, error) {
		return h.engine.ToggleLike(ctx, ref, who)
	})
}

// mutate runs op, re-running it from a fresh load while it reports a conflict.
func (h *Handler) mutate(c *gin.Context, op string, status int, run func(context.Context) (*content.Document, error)) {
	ctx := c.Request.Context()
	var (
		doc *content.Document
		err error
	)
	for attempt := 0; ; attempt++ {
		doc, err = run(ctx)
		if err == nil || !apperr.IsRetryable(err) || attempt >= h.retries {
			break
		}
		metrics.ConflictRetries.WithLabelValues(op).Inc()
		logger.Debugf("%s: conflict on attempt %d, retrying", op, attempt+1)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, doc)
}

func (h *Handler) getDocument(c *gin.Context) {
	ref, ok := refParam(c)
	if !ok {
		return
	}
	doc, err := h.engine.Get(c.Request.Context(), ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) listDocuments(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	docs, err := h.engine.List(c.Request.Context(), kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) getFeed(c *gin.Context) {
	withTimeline := false
	if v := c.Query("timeline"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, apperr.InvalidArgumentError("timeline", "timeline must be a boolean"))
			return
		}
		withTimeline = b
	}
	view, err := h.feed.Get(c.Request.Context(), c.Param("username"), withTimeline)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) me(c *gin.Context) {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		writeError(c, apperr.UnauthenticatedError(errors.New("no identity")))
		return
	}
	c.JSON(http.StatusOK, who)
}

func kindParam(c *gin.Context) (content.Kind, bool) {
	kind, err := content.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

func refParam(c *gin.Context) (content.Ref, bool) {
	kind, ok := kindParam(c)
	if !ok {
		return content.Ref{}, false
	}
	return content.Ref{Kind: kind, ID: c.Param("id")}, true
}

// writeError maps err onto a status code and a JSON body. Internal errors are
// logged and not echoed to the client.
func writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{"error": err.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Field != "" {
		body["field"] = ae.Field
	}
	c.JSON(status, body)
}

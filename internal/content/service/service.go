// Package service implements the comment and like engine: ownership-checked,
// version-guarded read-modify-write mutations of a document's embedded
// comment sequence and like set.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/apperr"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content/repository"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/identity"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/logger"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/metrics"
)

const (
	opCreateComment = "create_comment"
	opDeleteComment = "delete_comment"
	opToggleLike    = "toggle_like"
)

// Engine runs the interaction operations against a Repository. It never
// retries: a Conflict is returned to the caller, who may re-run the operation.
type Engine struct {
	repo  repository.Repository
	now   func() time.Time
	newID func() string
}

type Option func(*Engine)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithIDGenerator overrides comment id generation.
func WithIDGenerator(f func() string) Option { return func(e *Engine) { e.newID = f } }

func New(repo repository.Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewMemoryEngine returns an Engine backed by a fresh in-memory repository.
func NewMemoryEngine(opts ...Option) (*Engine, *repository.MemoryRepo) {
	repo := repository.NewMemoryRepo()
	return New(repo, opts...), repo
}

// Get loads one document.
func (e *Engine) Get(ctx context.Context, ref content.Ref) (*content.Document, error) {
	return e.load(ctx, ref)
}

// List returns all documents of kind.
func (e *Engine) List(ctx context.Context, kind content.Kind) ([]*content.Document, error) {
	docs, err := e.repo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return docs, nil
}

// CreateComment prepends a comment by who. For groups this posts to the group.
func (e *Engine) CreateComment(ctx context.Context, ref content.Ref, title, body string, who identity.Identity) (doc *content.Document, err error) {
	defer func() { record(opCreateComment, ref, err) }()

	if strings.TrimSpace(body) == "" {
		return nil, apperr.InvalidArgumentError("body", "empty comment body")
	}
	doc, err = e.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	c := content.Comment{
		ID:        e.newID(),
		Title:     title,
		Body:      body,
		Username:  who.Username,
		CreatedAt: e.now(),
	}
	doc.Comments = append([]content.Comment{c}, doc.Comments...)
	if err := e.save(ctx, doc); err != nil {
		return nil, err
	}
	logger.Debugf("comment %s created on %s by %s", c.ID, ref, who.Username)
	return doc, nil
}

// DeleteComment removes commentID if who authored it.
func (e *Engine) DeleteComment(ctx context.Context, ref content.Ref, commentID string, who identity.Identity) (doc *content.Document, err error) {
	defer func() { record(opDeleteComment, ref, err) }()

	doc, err = e.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	i := doc.CommentIndex(commentID)
	if i < 0 {
		return nil, apperr.NotFoundError("comment")
	}
	if doc.Comments[i].Username != who.Username {
		return nil, apperr.ForbiddenError("not comment owner")
	}
	doc.Comments = append(doc.Comments[:i:i], doc.Comments[i+1:]...)
	if err := e.save(ctx, doc); err != nil {
		return nil, err
	}
	logger.Debugf("comment %s deleted from %s by %s", commentID, ref, who.Username)
	return doc, nil
}

// ToggleLike adds who's like, or removes it if present. Liking a group joins it.
func (e *Engine) ToggleLike(ctx context.Context, ref content.Ref, who identity.Identity) (doc *content.Document, err error) {
	defer func() { record(opToggleLike, ref, err) }()

	doc, err = e.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if i := doc.LikeIndex(who.Username); i >= 0 {
		doc.Likes = append(doc.Likes[:i:i], doc.Likes[i+1:]...)
	} else {
		doc.Likes = append(doc.Likes, content.Like{Username: who.Username, CreatedAt: e.now()})
	}
	if err := e.save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (e *Engine) load(ctx context.Context, ref content.Ref) (*content.Document, error) {
	doc, err := e.repo.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFoundError("document")
		}
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	return doc, nil
}

func (e *Engine) save(ctx context.Context, doc *content.Document) error {
	err := e.repo.Save(ctx, doc)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrConflict):
		logger.Warnf("version conflict saving %s at version %d", doc.Ref(), doc.Version)
		return apperr.ConflictError(err)
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFoundError("document")
	}
	logger.Errorf("save %s failed: %v", doc.Ref(), err)
	return fmt.Errorf("save %s: %w", doc.Ref(), err)
}

func record(op string, ref content.Ref, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.CodeOf(err).String()
	}
	metrics.Interactions.WithLabelValues(op, string(ref.Kind), outcome).Inc()
}

package repository

import (
	"context"
	"errors"

	"github.com/ndsf/awesome-douban/backend/go-services/internal/content"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned by Save when the stored version no longer matches
	// the version the caller loaded.
	ErrConflict = errors.New("document version conflict")
	ErrExists   = errors.New("document already exists")
)

// Repository is the document store consumed by the interaction engine and the
// feed aggregator.
type Repository interface {
	Create(ctx context.Context, doc *content.Document) (string, error)
	Get(ctx context.Context, ref content.Ref) (*content.Document, error)
	List(ctx context.Context, kind content.Kind) ([]*content.Document, error)
	// Save persists doc if the stored version equals doc.Version and bumps
	// doc.Version on success.
	Save(ctx context.Context, doc *content.Document) error
	Ping(ctx context.Context) error
}

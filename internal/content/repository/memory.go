package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content"
)

// MemoryRepo is an in-memory repository used when MongoDB is not configured
// and in unit tests. Documents are cloned on the way in and out.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[content.Ref]*content.Document
	seq   map[content.Ref]int
	next  int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store: make(map[content.Ref]*content.Document),
		seq:   make(map[content.Ref]int),
	}
}

func (m *MemoryRepo) Create(_ context.Context, doc *content.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	ref := doc.Ref()
	if _, ok := m.store[ref]; ok {
		return "", ErrExists
	}
	doc.Version = 1
	m.store[ref] = doc.Clone()
	m.seq[ref] = m.next
	m.next++
	return doc.ID, nil
}

func (m *MemoryRepo) Get(_ context.Context, ref content.Ref) (*content.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[ref]; ok {
		return d.Clone(), nil
	}
	return nil, ErrNotFound
}

// List returns the documents of kind in insertion order.
func (m *MemoryRepo) List(_ context.Context, kind content.Kind) ([]*content.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*content.Document, 0)
	for ref, d := range m.store {
		if ref.Kind == kind {
			out = append(out, d.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return m.seq[out[i].Ref()] < m.seq[out[j].Ref()]
	})
	return out, nil
}

func (m *MemoryRepo) Save(_ context.Context, doc *content.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := doc.Ref()
	cur, ok := m.store[ref]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != doc.Version {
		return ErrConflict
	}
	next := doc.Clone()
	next.Version = cur.Version + 1
	m.store[ref] = next
	doc.Version = next.Version
	return nil
}

func (m *MemoryRepo) Ping(context.Context) error { return nil }

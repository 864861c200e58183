// Package memory is a process-local DocumentStore for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
)

type Store struct {
	mu    sync.RWMutex
	docs  []domain.StoredDocument
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }
func WithIDs(newID func() string) Option    { return func(s *Store) { s.newID = newID } }

func New(opts ...Option) *Store {
	s := &Store{now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Insert(_ context.Context, doc domain.Document) (domain.StoredDocument, error) {
	body := make(domain.Document, len(doc))
	for k, v := range doc {
		body[k] = v
	}
	now := s.now().UTC()
	d := domain.StoredDocument{ID: s.newID(), Body: body, CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	s.docs = append(s.docs, d)
	s.mu.Unlock()
	return d, nil
}

// List returns documents newest first; equal timestamps keep reverse insertion order.
func (s *Store) List(_ context.Context) ([]domain.StoredDocument, error) {
	s.mu.RLock()
	out := make([]domain.StoredDocument, 0, len(s.docs))
	for i := len(s.docs) - 1; i >= 0; i-- {
		out = append(out, s.docs[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.docs {
		if d.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

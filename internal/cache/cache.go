// Package cache keeps the client's list of finalized submissions and mirrors it
// into a single key-value slot after every change.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
	"github.com/DAVIDafergan/tatpro-intake/internal/pricing"
)

// StorageKey is the slot holding the JSON array of submissions.
const StorageKey = "tat_pro_submissions"

var (
	ErrNotFound  = errors.New("submission not found")
	ErrCancelled = errors.New("deletion not confirmed")
)

type Store struct {
	kv    ports.KeyValue
	tag   language.Tag
	now   func() time.Time
	newID func() string
	list  []domain.Submission
}

type Option func(*Store)

// WithLocale sets the locale used for timestamps and price labels.
func WithLocale(tag language.Tag) Option { return func(s *Store) { s.tag = tag } }

// WithClock overrides the creation-time source.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDs overrides id generation.
func WithIDs(newID func() string) Option { return func(s *Store) { s.newID = newID } }

func New(kv ports.KeyValue, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		tag:   language.Hebrew,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the in-memory list with the persisted one. Malformed data is
// logged and treated as an empty list; only slot read failures are returned.
func (s *Store) Load() error {
	s.list = nil
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		return fmt.Errorf("load submissions: %w", err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	var list []domain.Submission
	if err := json.Unmarshal(raw, &list); err != nil {
		slog.Error("failed to load submissions", "key", StorageKey, "err", err)
		return nil
	}
	s.list = list
	return nil
}

// List returns a copy of the submissions in insertion order.
func (s *Store) List() []domain.Submission {
	out := make([]domain.Submission, len(s.list))
	copy(out, s.list)
	return out
}

// Register snapshots form and price into a new submission and persists the
// full list. If the write fails the list is left as it was.
func (s *Store) Register(form domain.FormData, price pricing.Price) (domain.Submission, error) {
	sub := domain.Submission{
		FormData:        form,
		ID:              s.newID(),
		Timestamp:       FormatTimestamp(s.now(), s.tag),
		CalculatedPrice: price.StoredLabel(s.tag),
	}
	next := append(s.List(), sub)
	if err := s.persist(next); err != nil {
		return domain.Submission{}, fmt.Errorf("register submission: %w", err)
	}
	s.list = next
	return sub, nil
}

// Delete removes the submission with id after confirm approves it. A nil
// confirm never approves. The order of the remaining submissions is preserved.
func (s *Store) Delete(id string, confirm func(domain.Submission) bool) error {
	idx := -1
	for i, sub := range s.list {
		if sub.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	if confirm == nil || !confirm(s.list[idx]) {
		return ErrCancelled
	}
	next := make([]domain.Submission, 0, len(s.list)-1)
	next = append(next, s.list[:idx]...)
	next = append(next, s.list[idx+1:]...)
	if err := s.persist(next); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	s.list = next
	return nil
}

func (s *Store) persist(list []domain.Submission) error {
	if list == nil {
		list = []domain.Submission{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.kv.Put(StorageKey, data)
}

// FormatTimestamp renders t the way the locale's short date-time reads.
func FormatTimestamp(t time.Time, tag language.Tag) string {
	if base, _ := tag.Base(); base.String() == "he" {
		return t.Format("2.1.2006, 15:04:05")
	}
	return t.Format("1/2/2006, 3:04:05 PM")
}

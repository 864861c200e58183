package ports

import (
	"context"
	"errors"
	"io"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
)

// ErrNotFound is returned by stores when an id matches no document.
var ErrNotFound = errors.New("document not found")

// DocumentStore defines persistence operations for ingested documents.
type DocumentStore interface {
	// Insert stores doc verbatim and assigns id and timestamps.
	Insert(ctx context.Context, doc domain.Document) (domain.StoredDocument, error)
	// List returns every document, newest first.
	List(ctx context.Context) ([]domain.StoredDocument, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// KeyValue is the client-side durable slot store.
// Get returns ok=false when the key was never written.
type KeyValue interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
}

// AdminChecker validates an admin access code.
type AdminChecker interface {
	Check(ctx context.Context, code string) (bool, error)
}

// Publisher forwards a finalized submission to the ingest API.
type Publisher interface {
	Publish(ctx context.Context, s domain.Submission) error
}

// ReportWriter renders the admin leads listing into a downloadable file.
type ReportWriter interface {
	ContentType() string
	Extension() string
	Write(w io.Writer, docs []domain.StoredDocument) error
}

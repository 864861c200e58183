package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

// Repository stores documents as JSON text with server-assigned metadata
// columns. Bodies are never validated against a schema.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the SQLite database at dsn and applies the schema. It is safe to
// call against an existing database.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", withParams(dsn, "_busy_timeout=5000&_journal_mode=WAL"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	// One writer at a time avoids SQLITE_BUSY under concurrent submits.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Repository{db: db, now: time.Now}, nil
}

// withParams appends driver parameters, keeping any query the caller set.
func withParams(dsn, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repository) Insert(ctx context.Context, doc domain.Document) (domain.StoredDocument, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return domain.StoredDocument{}, fmt.Errorf("encode document: %w", err)
	}
	now := r.now().UTC()
	d := domain.StoredDocument{
		ID:        uuid.NewString(),
		Body:      doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO documents (id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		d.ID, string(body), now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return domain.StoredDocument{}, fmt.Errorf("insert document: %w", err)
	}
	return d, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.StoredDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, body, created_at, updated_at
		FROM documents ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	list := []domain.StoredDocument{}
	for rows.Next() {
		var (
			d                domain.StoredDocument
			body             string
			created, updated int64
		)
		if err := rows.Scan(&d.ID, &body, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if d.Body, err = decodeBody(body); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", d.ID, err)
		}
		d.CreatedAt = time.Unix(0, created).UTC()
		d.UpdatedAt = time.Unix(0, updated).UTC()
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return list, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func decodeBody(s string) (domain.Document, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var doc domain.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

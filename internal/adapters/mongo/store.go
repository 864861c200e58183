// Package mongo stores documents in a MongoDB collection without a schema,
// the way the original intake server kept its submissions.
package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
)

// Collection holds one document per submission.
const Collection = "submissions"

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// Connect configures a client for uri. The driver connects lazily, so an
// unreachable server surfaces on Ping or on the first operation.
func Connect(uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(Collection),
		now:    time.Now,
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Insert(ctx context.Context, doc domain.Document) (domain.StoredDocument, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	id := bson.NewObjectID()
	m := toBSON(doc)
	m[domain.KeyID] = id
	m[domain.KeyCreatedAt] = now
	m[domain.KeyUpdatedAt] = now
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return domain.StoredDocument{}, fmt.Errorf("insert document: %w", err)
	}
	return domain.StoredDocument{ID: id.Hex(), Body: doc, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Store) List(ctx context.Context) ([]domain.StoredDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: domain.KeyCreatedAt, Value: -1}, {Key: domain.KeyID, Value: -1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]domain.StoredDocument, 0, len(raw))
	for _, m := range raw {
		out = append(out, fromBSON(m))
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ports.ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: domain.KeyID, Value: oid}})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// toBSON copies doc, turning json.Number values into native numbers so they
// are stored as BSON numerics rather than strings.
func toBSON(doc domain.Document) bson.M {
	m := make(bson.M, len(doc)+3)
	for k, v := range doc {
		m[k] = bsonValue(v)
	}
	return m
}

func bsonValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(bson.M, len(t))
		for k, vv := range t {
			out[k] = bsonValue(vv)
		}
		return out
	case domain.Document:
		return toBSON(t)
	case []any:
		out := make(bson.A, len(t))
		for i, vv := range t {
			out[i] = bsonValue(vv)
		}
		return out
	default:
		return v
	}
}

// fromBSON splits the server-assigned keys off a stored document.
func fromBSON(m bson.M) domain.StoredDocument {
	var d domain.StoredDocument
	body := make(domain.Document, len(m))
	for k, v := range m {
		switch k {
		case domain.KeyID:
			d.ID = idString(v)
		case domain.KeyCreatedAt:
			d.CreatedAt = timeValue(v)
		case domain.KeyUpdatedAt:
			d.UpdatedAt = timeValue(v)
		default:
			body[k] = plain(v)
		}
	}
	d.Body = body
	return d
}

func idString(v any) string {
	switch t := v.(type) {
	case bson.ObjectID:
		return t.Hex()
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

func timeValue(v any) time.Time {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	default:
		return time.Time{}
	}
}

// plain converts driver types into values encoding/json renders naturally.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = plain(vv)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = plain(vv)
		}
		return out
	case bson.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case bson.ObjectID:
		return t.Hex()
	default:
		return v
	}
}

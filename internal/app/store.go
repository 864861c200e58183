package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DAVIDafergan/tatpro-intake/internal/adapters/memory"
	mongoadapter "github.com/DAVIDafergan/tatpro-intake/internal/adapters/mongo"
	sqliteadapter "github.com/DAVIDafergan/tatpro-intake/internal/adapters/sqlite"
	"github.com/DAVIDafergan/tatpro-intake/internal/config"
	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
)

// OpenStore returns the configured document store. A store that cannot be
// opened is logged and replaced by one whose every call fails, so the
// process keeps serving its other routes.
func OpenStore(ctx context.Context, cfg config.Config) ports.DocumentStore {
	switch cfg.Store {
	case config.StoreMemory:
		slog.Info("using in-memory store")
		return memory.New()
	case config.StoreMongo:
		if cfg.MongoURI == "" {
			return unavailable(errors.New("MONGO_URI is not set"))
		}
		s, err := mongoadapter.Connect(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return unavailable(err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.Ping(pingCtx); err != nil {
			// The driver keeps retrying; requests succeed once the server is up.
			slog.Error("mongodb error", "err", err)
			return s
		}
		slog.Info("connected to mongodb", "db", cfg.MongoDB)
		return s
	default:
		r, err := sqliteadapter.New(cfg.DBPath)
		if err != nil {
			return unavailable(err)
		}
		slog.Info("using sqlite store", "path", cfg.DBPath)
		return r
	}
}

func unavailable(err error) ports.DocumentStore {
	slog.Error("document store unavailable", "err", err)
	return unavailableStore{err: fmt.Errorf("document store unavailable: %w", err)}
}

type unavailableStore struct{ err error }

func (s unavailableStore) Insert(context.Context, domain.Document) (domain.StoredDocument, error) {
	return domain.StoredDocument{}, s.err
}
func (s unavailableStore) List(context.Context) ([]domain.StoredDocument, error) { return nil, s.err }
func (s unavailableStore) Delete(context.Context, string) error                  { return s.err }
func (s unavailableStore) Ping(context.Context) error                            { return s.err }
func (s unavailableStore) Close() error                                          { return nil }

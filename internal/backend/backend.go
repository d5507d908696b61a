// Package backend opens the document store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/highscore-board/internal/config"
	"github.com/highscore-board/internal/mongo"
	"github.com/highscore-board/internal/postgres"
	"github.com/highscore-board/internal/redis"
	"github.com/highscore-board/internal/store"
)

// Store is an opened document store with its release function
type Store struct {
	store.DocumentStore
	Backend string
	close   func()
}

// Close releases connections held by the store
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the configured backend and, when enabled, bootstraps an
// empty collection.
func Open(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (*Store, error) {
	s, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.ShouldCreate() {
		created, err := store.Ensure(ctx, s)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("bootstrapping %s document: %w", cfg.Backend, err)
		}
		if created {
			logger.Info("created empty highscore document", "backend", cfg.Backend)
		}
	}
	return s, nil
}

func open(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (*Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		logger.Info("using file document store", "path", cfg.File.Path)
		return &Store{DocumentStore: store.NewFileStore(cfg.File.Path), Backend: cfg.Backend}, nil

	case config.BackendMemory:
		logger.Warn("using in-memory document store, data is lost on exit")
		return &Store{DocumentStore: store.NewMemoryStore(nil), Backend: cfg.Backend}, nil

	case config.BackendRedis:
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr, "key", cfg.Redis.Key)
		rs, err := redis.NewDocumentStore(ctx, &cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return &Store{DocumentStore: rs, Backend: cfg.Backend, close: func() { rs.Close() }}, nil

	case config.BackendPostgres:
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		ps, err := postgres.NewDocumentStore(ctx, &cfg.Postgres, cfg.Document, logger)
		if err != nil {
			return nil, err
		}
		if err := ps.RunMigrations(ctx); err != nil {
			ps.Close()
			return nil, err
		}
		return &Store{DocumentStore: ps, Backend: cfg.Backend, close: ps.Close}, nil

	case config.BackendMongo:
		logger.Info("connecting to MongoDB", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		ms, err := mongo.NewDocumentStore(ctx, &cfg.Mongo, cfg.Document, logger)
		if err != nil {
			return nil, err
		}
		return &Store{DocumentStore: ms, Backend: cfg.Backend, close: func() { ms.Close(context.Background()) }}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

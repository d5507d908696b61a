// Package redis stores the highscore document as a single Redis string key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/highscore-board/internal/config"
	"github.com/highscore-board/internal/store"
)

// DocumentStore implements store.DocumentStore on one Redis key
type DocumentStore struct {
	client redis.Cmdable
	key    string
	logger *slog.Logger
	closer func() error
}

// NewDocumentStore dials Redis and verifies the connection
func NewDocumentStore(ctx context.Context, cfg *config.RedisConfig, logger *slog.Logger) (*DocumentStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	s := NewWithClient(client, cfg.Key, logger)
	s.closer = client.Close
	return s, nil
}

// NewWithClient wraps an existing client, e.g. a cluster client or a mock
func NewWithClient(client redis.Cmdable, key string, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{
		client: client,
		key:    key,
		logger: logger,
	}
}

// Load fetches the document
func (s *DocumentStore) Load(ctx context.Context) ([]byte, error) {
	doc, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.Missing("loading redis document")
	}
	if err != nil {
		return nil, store.Unavailable("loading redis document", err)
	}
	return doc, nil
}

// Save overwrites the document with no expiry
func (s *DocumentStore) Save(ctx context.Context, doc []byte) error {
	if err := s.client.Set(ctx, s.key, doc, 0).Err(); err != nil {
		return store.Unavailable("saving redis document", err)
	}
	s.logger.Debug("redis document saved", "key", s.key, "bytes", len(doc))
	return nil
}

// Ping checks the connection, used by readiness probes
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection if this store opened it
func (s *DocumentStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

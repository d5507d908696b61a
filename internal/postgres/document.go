// Package postgres stores the highscore document as one JSONB row.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/highscore-board/internal/config"
	"github.com/highscore-board/internal/store"
)

// Querier is the subset of pgxpool.Pool the store needs
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DocumentStore implements store.DocumentStore on a row of the documents table
type DocumentStore struct {
	db     Querier
	pool   *pgxpool.Pool
	name   string
	logger *slog.Logger
}

// NewDocumentStore opens a connection pool and verifies the connection
func NewDocumentStore(ctx context.Context, cfg *config.PostgresConfig, name string, logger *slog.Logger) (*DocumentStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := NewWithQuerier(pool, name, logger)
	s.pool = pool
	return s, nil
}

// NewWithQuerier builds a store over an existing pool or transaction
func NewWithQuerier(db Querier, name string, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{
		db:     db,
		name:   name,
		logger: logger,
	}
}

// Close closes the pool if this store opened it
func (s *DocumentStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// RunMigrations creates the documents table
func (s *DocumentStore) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			body JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	s.logger.Info("database migrations completed")
	return nil
}

// Load reads the document body
func (s *DocumentStore) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := s.db.QueryRow(ctx, `SELECT body::text FROM documents WHERE name = $1`, s.name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.Missing("loading postgres document")
	}
	if err != nil {
		return nil, store.Unavailable("loading postgres document", err)
	}
	return []byte(body), nil
}

// Save upserts the document body
func (s *DocumentStore) Save(ctx context.Context, doc []byte) error {
	query := `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2::jsonb, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.Exec(ctx, query, s.name, string(doc)); err != nil {
		return store.Unavailable("saving postgres document", err)
	}
	return nil
}

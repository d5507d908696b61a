// Package mongo stores the highscore document in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/highscore-board/internal/config"
	"github.com/highscore-board/internal/store"
)

// Collection is the subset of *mongo.Collection the store needs
type Collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

type record struct {
	ID        string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// DocumentStore implements store.DocumentStore on one MongoDB document
type DocumentStore struct {
	collection Collection
	client     *mongo.Client
	name       string
	logger     *slog.Logger
}

// NewDocumentStore connects to MongoDB and verifies the connection
func NewDocumentStore(ctx context.Context, cfg *config.MongoConfig, name string, logger *slog.Logger) (*DocumentStore, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	s := NewWithCollection(client.Database(cfg.Database).Collection(cfg.Collection), name, logger)
	s.client = client
	return s, nil
}

// NewWithCollection builds a store over an existing collection handle
func NewWithCollection(c Collection, name string, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{
		collection: c,
		name:       name,
		logger:     logger,
	}
}

// Load reads the document body
func (s *DocumentStore) Load(ctx context.Context) ([]byte, error) {
	var rec record
	err := s.collection.FindOne(ctx, bson.M{"_id": s.name}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.Missing("loading mongo document")
	}
	if err != nil {
		return nil, store.Unavailable("loading mongo document", err)
	}
	return []byte(rec.Body), nil
}

// Save replaces the document, inserting it on first write
func (s *DocumentStore) Save(ctx context.Context, doc []byte) error {
	rec := record{
		ID:        s.name,
		Body:      string(doc),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": s.name}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return store.Unavailable("saving mongo document", err)
	}
	return nil
}

// Close disconnects the client if this store opened it
func (s *DocumentStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

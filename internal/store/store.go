// Package store defines the whole-document persistence contract and the
// local backends. Remote backends live in internal/redis, internal/postgres
// and internal/mongo.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/highscore-board/internal/domain"
)

// ErrNotExist is wrapped into load errors when the backing blob has never been written.
var ErrNotExist = errors.New("document does not exist")

// EmptyDocument is the serialized form of an empty collection.
var EmptyDocument = []byte("[]")

// DocumentStore reads and writes the entire highscore collection as one blob.
// Save fully overwrites the previous contents.
type DocumentStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
}

// Unavailable wraps err so that it matches domain.ErrStorageUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}

// Missing builds the load error returned when the document is absent.
func Missing(op string) error {
	return Unavailable(op, ErrNotExist)
}

// Ensure writes an empty collection if the store has no document yet.
// It reports whether a document was created.
func Ensure(ctx context.Context, s DocumentStore) (bool, error) {
	_, err := s.Load(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotExist) {
		return false, err
	}
	if err := s.Save(ctx, EmptyDocument); err != nil {
		return false, err
	}
	return true, nil
}

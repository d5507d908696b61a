package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the document in a single local file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the whole file
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("reading document file", err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Missing("reading document file")
		}
		return nil, Unavailable("reading document file", err)
	}
	return data, nil
}

// Save writes doc to a temporary sibling file and renames it over the target,
// so readers never observe a partially written document.
func (s *FileStore) Save(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return Unavailable("writing document file", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return Unavailable("creating temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return Unavailable("writing temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return Unavailable("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return Unavailable("closing temp file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return Unavailable("replacing document file", err)
	}
	return nil
}

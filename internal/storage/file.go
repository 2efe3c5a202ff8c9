package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	storeDirMode    = 0o700
	documentMode    = 0o600
	tempFilePattern = ".document-*.json.tmp"
)

// FileStore keeps the document in <dir>/<key>.json and replaces it by renaming
// a fully written temp file over it.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir. The directory is created on first save.
func NewFileStore(dir, key string) (*FileStore, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return nil, errors.New("document key is empty")
	}
	if strings.ContainsAny(trimmed, `/\`) || strings.HasPrefix(trimmed, ".") {
		return nil, fmt.Errorf("invalid document key %q", key)
	}
	return &FileStore{path: filepath.Join(filepath.Clean(dir), trimmed+".json")}, nil
}

// Path returns the document file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("reading document %s: %w", s.path, err)
	}
	return data, nil
}

func (s *FileStore) Save(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("creating temp document: %w", err)
	}
	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(doc); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("writing temp document: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("syncing temp document: %w", err)
	}
	if err := tempFile.Chmod(documentMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp document: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("closing temp document: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replacing document: %w", err)
	}
	cleanup = false
	return nil
}

// Close is a no-op; the file store holds no handles between calls.
func (s *FileStore) Close() error {
	return nil
}

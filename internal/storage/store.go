// Package storage persists the session collection as a single opaque document
// under a key. Load and Save always move the whole document.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/claude/ironprogress/internal/config"
)

// ErrNoDocument is returned by Load when nothing has been saved under the key yet.
var ErrNoDocument = errors.New("no stored document")

// Store is a whole-document key/value store. Save replaces the previous
// document; readers never observe a partial write.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
	Close() error
}

// Open creates the backend named by cfg.Driver. The postgres backend applies
// pending migrations before returning.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "file":
		return NewFileStore(cfg.Path, cfg.Key)
	case "sqlite":
		return OpenSQLite(filepath.Join(cfg.Path, "ironprogress.db"), cfg.Key)
	case "postgres":
		dsn := cfg.Postgres.DSN()
		if err := RunMigrations(dsn); err != nil {
			return nil, err
		}
		return NewPostgres(ctx, dsn, cfg.Key)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

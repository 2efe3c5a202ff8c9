package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps documents in the documents table through a pgxpool.Pool.
type PostgresStore struct {
	Pool *pgxpool.Pool
	key  string
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres creates a store with a connection pool.
func NewPostgres(ctx context.Context, dsn, key string) (*PostgresStore, error) {
	if key == "" {
		return nil, errors.New("document key is empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{Pool: pool, key: key}, nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := s.Pool.QueryRow(ctx,
		`SELECT body FROM documents WHERE key = $1`, s.key,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("loading document %q: %w", s.key, err)
	}
	return []byte(body), nil
}

func (s *PostgresStore) Save(ctx context.Context, doc []byte) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO documents (key, body, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		s.key, string(doc))
	if err != nil {
		return fmt.Errorf("saving document %q: %w", s.key, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.Pool.Close()
	return nil
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

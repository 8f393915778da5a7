package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/BradenHooton/warden/internal/models"
)

// DefaultKVTable is the table created by the bundled migrations.
const DefaultKVTable = "kv_store"

// PostgresStore keeps values in a (key TEXT PRIMARY KEY, value JSONB) table.
type PostgresStore struct {
	pool      *pgxpool.Pool
	selectSQL string
	upsertSQL string
}

// NewPostgresStore uses table, or DefaultKVTable when empty.
func NewPostgresStore(pool *pgxpool.Pool, table string) *PostgresStore {
	if table == "" {
		table = DefaultKVTable
	}
	t := pq.QuoteIdentifier(table)

	return &PostgresStore{
		pool:      pool,
		selectSQL: fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, t),
		upsertSQL: fmt.Sprintf(`
			INSERT INTO %s (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, t),
	}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, s.selectSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres store get %q: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store get %q: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return fmt.Errorf("postgres store set %q: %w", key, err)
	}
	if _, err := s.pool.Exec(ctx, s.upsertSQL, key, string(value)); err != nil {
		return fmt.Errorf("postgres store set %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

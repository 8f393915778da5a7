// Package database owns the Postgres pool behind the postgres storage
// backend and the migrations that create its key-value table.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BradenHooton/warden/internal/config"
	"github.com/BradenHooton/warden/internal/storage"
)

const connectTimeout = 10 * time.Second

// DB is a pgx pool. Warden keeps no relational schema; the pool only serves
// the key-value table read by storage.PostgresStore.
type DB struct {
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open builds a pool from cfg and fails unless the server answers a ping
// within connectTimeout.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logger.Info("postgres storage pool ready",
		slog.String("database", cfg.Name),
		slog.Int("max_conns", int(cfg.MaxConns)),
		slog.String("kv_table", cfg.KVTable),
	)
	return &DB{Pool: pool, logger: logger}, nil
}

// NewFromPool wraps a pool created elsewhere, such as a test container.
func NewFromPool(pool *pgxpool.Pool, logger *slog.Logger) *DB {
	return &DB{Pool: pool, logger: logger}
}

// KVStore returns the storage backend over table.
func (db *DB) KVStore(table string) *storage.PostgresStore {
	return storage.NewPostgresStore(db.Pool, table)
}

func (db *DB) Close() {
	db.logger.Info("closing postgres storage pool")
	db.Pool.Close()
}

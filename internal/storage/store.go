// Package storage provides the key-value persistence the repositories are
// built on. Values are opaque JSON documents addressed by a string key.
package storage

import (
	"context"
	"regexp"

	"github.com/BradenHooton/warden/internal/models"
)

// Store is a string-keyed blob store. Get returns models.ErrNotFound when the
// key has never been written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// Backend names accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return models.ErrBadRequest
	}
	return nil
}

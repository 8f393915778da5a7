package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/storage"
)

// loadList decodes the JSON array stored under key. A missing key reads as
// an empty list.
func loadList[T any](ctx context.Context, store storage.Store, key string) ([]T, error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, models.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveList[T any](ctx context.Context, store storage.Store, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, data)
}

package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/storage"
)

// UsersKey is the storage key holding the user list.
const UsersKey = "users"

// UserRepository persists users as one JSON array. Every call reloads the
// array so several processes sharing a backend see each other's writes.
type UserRepository struct {
	store storage.Store
	mu    sync.Mutex
}

func NewUserRepository(store storage.Store) *UserRepository {
	return &UserRepository{store: store}
}

// List returns users in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	users, err := loadList[*models.User](ctx, r.store, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

// Create appends user. The id and email must both be unused.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == user.ID || strings.EqualFold(u.Email, user.Email) {
			return nil, models.ErrConflict
		}
	}

	created := user.Clone()
	users = append(users, created)
	if err := saveList(ctx, r.store, UsersKey, users); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created.Clone(), nil
}

// Update replaces the stored record with the same id, keeping its position.
func (r *UserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, u := range users {
		if u.ID == user.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, models.ErrNotFound
	}

	users[idx] = user.Clone()
	if err := saveList(ctx, r.store, UsersKey, users); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user.Clone(), nil
}

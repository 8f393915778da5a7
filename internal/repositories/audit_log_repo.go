package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/storage"
)

// AuditLogsKey is the storage key holding the audit log.
const AuditLogsKey = "auditLogs"

// AuditLogRepository keeps a bounded, most-recent-first list of entries.
type AuditLogRepository struct {
	store storage.Store
	mu    sync.Mutex
}

func NewAuditLogRepository(store storage.Store) *AuditLogRepository {
	return &AuditLogRepository{store: store}
}

// Prepend inserts entry at the head and trims the log. With the global scope
// only the first capacity entries survive; with per_user each user keeps up to capacity
// of their own.
func (r *AuditLogRepository) Prepend(ctx context.Context, entry models.AuditEntry, capacity int, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := loadList[models.AuditEntry](ctx, r.store, AuditLogsKey)
	if err != nil {
		return fmt.Errorf("failed to load audit log: %w", err)
	}

	entries = append([]models.AuditEntry{entry}, entries...)
	entries = trimAudit(entries, capacity, scope)

	if err := saveList(ctx, r.store, AuditLogsKey, entries); err != nil {
		return fmt.Errorf("failed to save audit log: %w", err)
	}
	return nil
}

// List returns every retained entry, most recent first.
func (r *AuditLogRepository) List(ctx context.Context) ([]models.AuditEntry, error) {
	entries, err := loadList[models.AuditEntry](ctx, r.store, AuditLogsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit log: %w", err)
	}
	return entries, nil
}

// ListByUser returns up to limit entries for one user, most recent first.
// A limit of zero or less returns all of them.
func (r *AuditLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.AuditEntry, 0)
	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func trimAudit(entries []models.AuditEntry, capacity int, scope string) []models.AuditEntry {
	if capacity <= 0 {
		return entries
	}
	if scope != models.AuditCapScopePerUser {
		if len(entries) > capacity {
			entries = entries[:capacity]
		}
		return entries
	}

	seen := make(map[string]int)
	kept := make([]models.AuditEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.UserID] >= capacity {
			continue
		}
		seen[e.UserID]++
		kept = append(kept, e)
	}
	return kept
}

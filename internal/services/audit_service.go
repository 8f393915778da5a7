package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/pkg/logger"
	"github.com/google/uuid"
)

// AuditLogRepository defines the interface for audit log persistence
type AuditLogRepository interface {
	Prepend(ctx context.Context, entry models.AuditEntry, capacity int, scope string) error
	List(ctx context.Context) ([]models.AuditEntry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error)
}

// AuditService handles audit logging with dual-write pattern (slog + repository)
type AuditService struct {
	repo     AuditLogRepository
	audit    *logger.AuditLogger
	logger   *slog.Logger
	capacity int
	scope    string
	now      func() time.Time
}

// NewAuditService creates a new AuditService. capacity and scope control how
// the stored log is trimmed on every write.
func NewAuditService(repo AuditLogRepository, capacity int, scope string, log *slog.Logger) *AuditService {
	if capacity <= 0 {
		capacity = models.DefaultAuditCap
	}
	if scope == "" {
		scope = models.AuditCapScopeGlobal
	}
	return &AuditService{
		repo:     repo,
		audit:    logger.NewAuditLogger(log),
		logger:   log,
		capacity: capacity,
		scope:    scope,
		now:      time.Now,
	}
}

// Record stamps and stores a new entry for userID.
func (s *AuditService) Record(ctx context.Context, userID, action string) models.AuditEntry {
	entry := models.AuditEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Timestamp: s.now().UTC(),
	}
	s.RecordEntry(ctx, entry)
	return entry
}

// RecordEntry stores a pre-built entry. Persistence failures are logged and
// otherwise ignored so they never fail the operation being audited.
func (s *AuditService) RecordEntry(ctx context.Context, entry models.AuditEntry) {
	// Dual-write: immediate slog output
	s.audit.Log(ctx, logger.AuditEvent{
		EventType: "user_action",
		UserID:    entry.UserID,
		Action:    entry.Action,
		Success:   true,
	})

	if err := s.repo.Prepend(ctx, entry, s.capacity, s.scope); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist audit entry",
			slog.String("user_id", entry.UserID),
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
	}
}

// TrailForUser returns the most recent entries for one user, newest first.
func (s *AuditService) TrailForUser(ctx context.Context, userID string) ([]models.AuditEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID, s.capacity)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load audit trail", slog.String("user_id", userID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to load audit trail: %w", models.ErrInternalServer)
	}
	return entries, nil
}

// Recent returns the whole retained log, newest first.
func (s *AuditService) Recent(ctx context.Context) ([]models.AuditEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load audit log", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load audit log: %w", models.ErrInternalServer)
	}
	return entries, nil
}

// LogRoleChange writes the structured audit line for a role change outcome.
func (s *AuditService) LogRoleChange(ctx context.Context, userID string, from, to models.Role, err error) {
	s.audit.LogRoleChange(ctx, userID, string(from), string(to), err)
}

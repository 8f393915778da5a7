package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/rbac"
)

// DashboardStatsResponse contains aggregate admin metrics.
type DashboardStatsResponse struct {
	TotalUsers        int                 `json:"total_users"`
	RoleBreakdown     map[models.Role]int `json:"role_breakdown"`
	CustomMatrices    int                 `json:"custom_matrices"`
	InconsistentUsers int                 `json:"inconsistent_users"`
	AuditEntries      int                 `json:"audit_entries"`
}

// ActivityEntry is a single item in a recent-activity feed.
type ActivityEntry struct {
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
}

// DashboardActivityResponse contains recent event feeds.
type DashboardActivityResponse struct {
	RecentCreations   []ActivityEntry `json:"recent_creations"`
	RecentRoleChanges []ActivityEntry `json:"recent_role_changes"`
	RecentReverts     []ActivityEntry `json:"recent_reverts"`
}

// AdminService aggregates data for admin dashboard endpoints.
type AdminService struct {
	userRepo  UserRepository
	auditRepo AuditLogRepository
	logger    *slog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(userRepo UserRepository, auditRepo AuditLogRepository, logger *slog.Logger) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// GetDashboardStats returns user counts per role. InconsistentUsers counts
// stored matrices that break the permission rules.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*DashboardStatsResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error("dashboard: failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	entries, err := s.auditRepo.List(ctx)
	if err != nil {
		s.logger.Error("dashboard: failed to load audit log", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	stats := &DashboardStatsResponse{
		TotalUsers:    len(users),
		RoleBreakdown: make(map[models.Role]int, len(models.Roles)),
		AuditEntries:  len(entries),
	}
	for _, role := range models.Roles {
		stats.RoleBreakdown[role] = 0
	}
	for _, u := range users {
		stats.RoleBreakdown[u.Role]++
		if u.Permissions == nil {
			continue
		}
		if u.Role == models.RoleCustom {
			stats.CustomMatrices++
		}
		if !rbac.IsValid(*u.Permissions) {
			stats.InconsistentUsers++
		}
	}
	return stats, nil
}

// GetRecentActivity splits the audit log into feeds. limit is clamped to a
// maximum of 20.
func (s *AdminService) GetRecentActivity(ctx context.Context, limit int) (*DashboardActivityResponse, error) {
	if limit <= 0 || limit > 20 {
		limit = 20
	}

	entries, err := s.auditRepo.List(ctx)
	if err != nil {
		s.logger.Error("dashboard: failed to load audit log", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	resp := &DashboardActivityResponse{
		RecentCreations:   make([]ActivityEntry, 0),
		RecentRoleChanges: make([]ActivityEntry, 0),
		RecentReverts:     make([]ActivityEntry, 0),
	}
	appendCapped := func(feed []ActivityEntry, e models.AuditEntry) []ActivityEntry {
		if len(feed) >= limit {
			return feed
		}
		return append(feed, ActivityEntry{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			UserID:    e.UserID,
			Action:    e.Action,
		})
	}

	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.Action, "Created user"):
			resp.RecentCreations = appendCapped(resp.RecentCreations, e)
		case strings.HasPrefix(e.Action, "Updated role"):
			resp.RecentRoleChanges = appendCapped(resp.RecentRoleChanges, e)
		case strings.HasPrefix(e.Action, "Reverted role"):
			resp.RecentReverts = appendCapped(resp.RecentReverts, e)
		}
	}
	return resp, nil
}

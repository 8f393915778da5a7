package handlers

import (
	"time"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/services"
)

// UserResponse represents a user in the HTTP response. The password hash is
// never rendered.
type UserResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Email       string                   `json:"email"`
	Role        models.Role              `json:"role"`
	Permissions *models.PermissionMatrix `json:"permissions,omitempty"`
}

// ListUsersResponse is one page of the user table.
type ListUsersResponse struct {
	Users      []*UserResponse `json:"users"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// RoleChangeResponse describes a confirmed role change and how long it can
// be undone.
type RoleChangeResponse struct {
	ChangeID      string        `json:"change_id"`
	User          *UserResponse `json:"user"`
	PreviousRole  models.Role   `json:"previous_role"`
	UndoExpiresAt string        `json:"undo_expires_at"`
}

// AuditEntryResponse represents an audit log entry in HTTP response
type AuditEntryResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

// MessagesResponse carries validation messages from a dry run.
type MessagesResponse struct {
	Valid    bool     `json:"valid"`
	Messages []string `json:"messages"`
}

func userModelToResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
	if user.Permissions != nil {
		p := *user.Permissions
		resp.Permissions = &p
	}
	return resp
}

func pageToResponse(page *services.UserPage) *ListUsersResponse {
	users := make([]*UserResponse, 0, len(page.Users))
	for _, u := range page.Users {
		users = append(users, userModelToResponse(u))
	}
	return &ListUsersResponse{
		Users:      users,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

func auditEntriesToResponse(entries []models.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			Timestamp: e.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}

func messagesResponse(messages []string) MessagesResponse {
	if messages == nil {
		messages = []string{}
	}
	return MessagesResponse{Valid: len(messages) == 0, Messages: messages}
}

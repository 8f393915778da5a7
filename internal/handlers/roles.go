package handlers

import (
	"context"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/services"
	pkghttp "github.com/BradenHooton/warden/pkg/http"
)

// RoleService defines the role assignment operations
type RoleService interface {
	AssignRole(ctx context.Context, userID string, role models.Role, matrix *models.PermissionMatrix) (*services.RoleChange, error)
	Undo(ctx context.Context, changeID string) (*models.User, error)
	ExportMatrix(ctx context.Context, userID string) ([]byte, error)
}

// RoleHandler handles role assignment HTTP requests
type RoleHandler struct {
	service RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(service RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// AssignRoleRequest is the body of PUT /users/{id}/role. Permissions are
// only read for the Custom role.
type AssignRoleRequest struct {
	Role        string                   `json:"role" validate:"required,oneof=Admin Editor Viewer Custom"`
	Permissions *models.PermissionMatrix `json:"permissions,omitempty"`
}

// AssignRole handles PUT /users/{id}/role. The response arrives only after
// the save has been confirmed or rolled back.
func (h *RoleHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req AssignRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if msgs := ValidateRequest(req); msgs != nil {
		pkghttp.WriteValidationFailed(w, msgs)
		return
	}

	change, err := h.service.AssignRole(r.Context(), chi.URLParam(r, "id"), models.Role(req.Role), req.Permissions)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, RoleChangeResponse{
		ChangeID:      change.ID,
		User:          userModelToResponse(change.User),
		PreviousRole:  change.PreviousRole,
		UndoExpiresAt: change.UndoExpiresAt.Format(time.RFC3339Nano),
	})
}

// UndoRoleChange handles POST /role-changes/{id}/undo
func (h *RoleHandler) UndoRoleChange(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}

// ExportPermissions handles GET /users/{id}/permissions/export and serves
// the matrix as a file download.
func (h *RoleHandler) ExportPermissions(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportMatrix(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": services.ExportFilename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

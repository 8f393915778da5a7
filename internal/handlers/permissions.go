package handlers

import (
	"net/http"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/rbac"
	pkghttp "github.com/BradenHooton/warden/pkg/http"
)

// PermissionHandler exposes the permission rule engine.
type PermissionHandler struct{}

// NewPermissionHandler creates a new PermissionHandler
func NewPermissionHandler() *PermissionHandler {
	return &PermissionHandler{}
}

// ValidateMatrixRequest is the body of POST /permissions/validate.
type ValidateMatrixRequest struct {
	Permissions models.PermissionMatrix `json:"permissions"`
}

// DeriveMatrixRequest is the body of POST /permissions/derive.
type DeriveMatrixRequest struct {
	Role        string                  `json:"role" validate:"required,oneof=Admin Editor Viewer Custom"`
	Permissions models.PermissionMatrix `json:"permissions"`
}

// ValidateMatrix handles POST /permissions/validate
func (h *PermissionHandler) ValidateMatrix(w http.ResponseWriter, r *http.Request) {
	var req ValidateMatrixRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, messagesResponse(rbac.Validate(req.Permissions)))
}

// DeriveMatrix handles POST /permissions/derive. Preset roles get their
// fixed matrix; Custom returns the submitted matrix unchanged.
func (h *PermissionHandler) DeriveMatrix(w http.ResponseWriter, r *http.Request) {
	var req DeriveMatrixRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if msgs := ValidateRequest(req); msgs != nil {
		pkghttp.WriteValidationFailed(w, msgs)
		return
	}

	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, rbac.DeriveForRole(role, req.Permissions))
}

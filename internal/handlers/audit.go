package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/warden/internal/models"
	pkghttp "github.com/BradenHooton/warden/pkg/http"
)

// AuditService defines read access to the audit log
type AuditService interface {
	TrailForUser(ctx context.Context, userID string) ([]models.AuditEntry, error)
	Recent(ctx context.Context) ([]models.AuditEntry, error)
}

// AuditHandler handles audit log HTTP requests
type AuditHandler struct {
	service AuditService
	users   UserService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditService, users UserService) *AuditHandler {
	return &AuditHandler{service: service, users: users}
}

// GetUserAuditTrail handles GET /users/{id}/audit. Entries are most recent
// first.
func (h *AuditHandler) GetUserAuditTrail(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := h.users.GetUser(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	entries, err := h.service.TrailForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, auditEntriesToResponse(entries))
}

// ListAuditLog handles GET /audit
func (h *AuditHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Recent(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, auditEntriesToResponse(entries))
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/services"
	pkghttp "github.com/BradenHooton/warden/pkg/http"
)

// writeServiceError maps service sentinels onto the JSON error envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		pkghttp.WriteValidationFailed(w, ve.Messages)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrUndoExpired):
		pkghttp.WriteGone(w, "Undo window has expired")
	case errors.Is(err, models.ErrAlreadyReverted):
		pkghttp.WriteConflict(w, "Change has already been reverted")
	case errors.Is(err, models.ErrSaveFailed):
		pkghttp.WriteBadGateway(w, "Role change could not be saved and was reverted")
	case errors.Is(err, models.ErrInvalidRole), errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

package services

import (
	"strings"

	"github.com/BradenHooton/warden/internal/models"
)

// ValidationError carries the user-facing messages of a rejected form.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Unwrap lets callers treat every validation failure as a bad request.
func (e *ValidationError) Unwrap() error {
	return models.ErrBadRequest
}

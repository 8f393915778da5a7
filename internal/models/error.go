package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Role change errors
	ErrSaveFailed      = errors.New("role change could not be saved")
	ErrUndoExpired     = errors.New("undo window has expired")
	ErrAlreadyReverted = errors.New("change has already been reverted")
	ErrInvalidRole     = errors.New("unknown role")
	ErrNoUserSelected  = errors.New("no user selected")
)

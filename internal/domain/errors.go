package domain

import "errors"

// Domain errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("player not found")
	ErrConflict           = errors.New("player already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrCorruptDocument    = errors.New("highscore document is corrupt")
	ErrInternalError      = errors.New("internal server error")
)

// IsClientError reports whether err was caused by the caller's input
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidArgument)
}

// IsStorageError reports whether err originated in the document store or its contents
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrCorruptDocument)
}

package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Error kinds surfaced to API callers. Match them with errors.Is.
	ErrorUnauthenticated = errors.New("unauthenticated")
	ErrorForbidden       = errors.New("forbidden")
	ErrorConflict        = errors.New("conflict")
	ErrorValidation      = errors.New("validation failed")
	ErrorStorage         = errors.New("storage failure")
	ErrorInternal        = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Image storage errors.
	ErrFileNotFound    = errors.New("file does not exist")
	ErrInvalidFilePath = errors.New("invalid file path")
)

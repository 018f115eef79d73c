package common

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Messages surfaced to API callers.
const (
	MsgUnauthenticated   = "Unauthenticated request"
	MsgNotAuthorized     = "Not authorized"
	MsgUserNotFound      = "User not found"
	MsgIncorrectPassword = "Incorrect Password"
	MsgUserExists        = "User already exists"
	MsgPostNotFound      = "Post not found"
	MsgInvalidUserInput  = "Invalid user input"
	MsgInvalidPostInput  = "Invalid post input"
	MsgNoFile            = "No file provided"
	MsgFileTooLarge      = "File too large"
	MsgInvalidFilePath   = "Invalid file path"
	MsgStorageFailure    = "Storage failure"
	MsgInternal          = "Internal server error"
)

// AppError is the tagged error returned by services. Kind is one of the
// sentinel errors above; errors.Is(err, ErrorForbidden) works through Unwrap.
type AppError struct {
	Kind    error
	Message string
	Status  int
	Details []string

	// Trace is filled by the transport in development mode only.
	Trace string

	cause error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// Cause returns the underlying error, carrying the stack recorded where the
// AppError was created.
func (e *AppError) Cause() error {
	return e.cause
}

// StackTrace renders the recorded stack.
func (e *AppError) StackTrace() string {
	if e.cause == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.cause)
}

// Extensions is picked up by the GraphQL runtime and copied into the
// "extensions" object of the response error.
func (e *AppError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"status": e.Status}
	if len(e.Details) > 0 {
		ext["data"] = map[string]interface{}{"errors": e.Details}
	}
	if e.Trace != "" {
		ext["stack"] = e.Trace
	}
	return ext
}

// StatusFor maps an error kind to its HTTP-equivalent status code.
func StatusFor(kind error) int {
	switch {
	case errors.Is(kind, ErrorUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(kind, ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(kind, ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(kind, ErrorConflict):
		return http.StatusConflict
	case errors.Is(kind, ErrorValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func newAppError(kind error, msg string, details []string, cause error) *AppError {
	if cause == nil {
		cause = pkgerrors.New(msg)
	} else {
		cause = pkgerrors.WithStack(cause)
	}
	return &AppError{
		Kind:    kind,
		Message: msg,
		Status:  StatusFor(kind),
		Details: details,
		cause:   cause,
	}
}

func Unauthenticated(msg string) *AppError {
	return newAppError(ErrorUnauthenticated, msg, nil, nil)
}

func Forbidden(msg string) *AppError {
	return newAppError(ErrorForbidden, msg, nil, nil)
}

func NotFound(msg string) *AppError {
	return newAppError(ErrorNotFound, msg, nil, nil)
}

func Conflict(msg string) *AppError {
	return newAppError(ErrorConflict, msg, nil, nil)
}

// Validation reports every violated rule in details.
func Validation(msg string, details []string) *AppError {
	return newAppError(ErrorValidation, msg, details, nil)
}

// Storage wraps a database or filesystem fault. The cause is kept for logs
// and development traces, the message stays generic.
func Storage(err error) *AppError {
	return newAppError(ErrorStorage, MsgStorageFailure, nil, err)
}

// AsAppError returns err as an *AppError, converting anything else into a
// generic internal error.
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return newAppError(ErrorInternal, MsgInternal, nil, err)
}

package handler

import (
	"net/http"

	"github.com/mcoot/crosswordduel/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest      = apierr.CodeInvalidRequest
	CodeInvalidMoveRecord   = apierr.CodeInvalidMoveRecord
	CodeInvalidLetter       = apierr.CodeInvalidLetter
	CodeInvalidPosition     = apierr.CodeInvalidPosition
	CodeGameNotFound        = apierr.CodeGameNotFound
	CodeDictionaryNotLoaded = apierr.CodeDictionaryNotLoaded
	CodeUnavailable         = apierr.CodeUnavailable
	CodeInternalError       = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(message string) error {
	return apierr.NewUnavailableError(message)
}

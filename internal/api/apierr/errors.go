package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/relay"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeInvalidMoveRecord   = "INVALID_MOVE_RECORD"
	CodeInvalidLetter       = "INVALID_LETTER"
	CodeInvalidPosition     = "INVALID_POSITION"
	CodeInvalidMove         = "INVALID_MOVE"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeGameNotFound        = "GAME_NOT_FOUND"
	CodeGameNotActive       = "GAME_NOT_ACTIVE"
	CodeCellOccupied        = "CELL_OCCUPIED"
	CodeRackMismatch        = "RACK_MISMATCH"
	CodeDictionaryNotLoaded = "DICTIONARY_NOT_LOADED"
	CodeUnavailable         = "UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidMove, ve.Error()}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrInvalidMoveRecord):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMoveRecord, err.Error()}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrGameNotActive):
		return &httpError{http.StatusConflict, APIError{CodeGameNotActive, "Game is not active"}}
	case errors.Is(err, model.ErrNotPlayerTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrInvalidLetter):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidLetter, "Letter must be A-Z"}}
	case errors.Is(err, model.ErrInvalidPosition):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPosition, "Invalid board position"}}
	case errors.Is(err, model.ErrCellOccupied):
		return &httpError{http.StatusConflict, APIError{CodeCellOccupied, "Cell is already occupied"}}
	case errors.Is(err, model.ErrRackMismatch):
		return &httpError{http.StatusConflict, APIError{CodeRackMismatch, "Rack does not hold the placed tiles"}}
	case errors.Is(err, model.ErrDictionaryNotLoaded):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeDictionaryNotLoaded, "Dictionary not loaded"}}
	case errors.Is(err, relay.ErrStopped):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, "Relay is not running"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewMethodNotAllowedError creates an error for a route that exists under
// another method
func NewMethodNotAllowedError(method string) error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "Method " + method + " not allowed"}}
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(message string) error {
	return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Game errors
	ErrGameNotFound      = errors.New("game not found")
	ErrGameNotActive     = errors.New("game is not active")
	ErrNoPlayers         = errors.New("no players to seat")
	ErrNotPlayerTurn     = errors.New("not this player's turn")
	ErrInvalidLetter     = errors.New("invalid letter")
	ErrInvalidPosition   = errors.New("invalid board position")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrPendingPlacements = errors.New("placements are staged")
	ErrNoCursor          = errors.New("no square selected")
	ErrStateRejected     = errors.New("state rejected by verifier")

	// Rack and bag errors
	ErrRackMismatch     = errors.New("rack does not hold the placed tiles")
	ErrInvalidRackIndex = errors.New("invalid rack index")
	ErrNotEnoughTiles   = errors.New("not enough tiles in bag")

	// Move log errors
	ErrInvalidMoveRecord = errors.New("invalid move record")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)

// Validation reasons. A *ValidationError unwraps to its reason.
var (
	ErrNoPlacements        = errors.New("no placements")
	ErrDuplicateCoordinate = errors.New("duplicate coordinate")
	ErrNotSingleLine       = errors.New("placements are not in a single line")
	ErrMustCoverCenter     = errors.New("first move must cover the center square")
	ErrMustConnect         = errors.New("move must connect to existing tiles")
	ErrGapInLine           = errors.New("gap in line")
	ErrWordTooShort        = errors.New("word too short")
	ErrInvalidWord         = errors.New("invalid word")
)

// ValidationError is a recoverable rejection of a pending move
type ValidationError struct {
	Reason error
	Word   string // Set for ErrInvalidWord
}

func (e *ValidationError) Error() string {
	if e.Word != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Word)
	}
	return e.Reason.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// Reject creates a validation error for a reason
func Reject(reason error) *ValidationError {
	return &ValidationError{Reason: reason}
}

// RejectWord creates an invalid-word validation error
func RejectWord(word string) *ValidationError {
	return &ValidationError{Reason: ErrInvalidWord, Word: word}
}

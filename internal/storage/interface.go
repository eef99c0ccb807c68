package storage

import (
	"context"
	"fmt"

	"github.com/mcoot/crosswordduel/internal/model"
)

// Storage defines the interface for data persistence.
// Game state itself is never persisted; only committed moves and the
// dictionary word list are.
type Storage interface {
	// Move log operations
	AppendMove(ctx context.Context, record *model.MoveRecord) error
	ListMoves(ctx context.Context, gameID model.GameID) ([]*model.MoveRecord, error)

	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error

	Close() error
}

// ValidateMoveRecord checks the fields a move log entry must carry
func ValidateMoveRecord(record *model.MoveRecord) error {
	if record == nil {
		return fmt.Errorf("%w: missing record", model.ErrInvalidMoveRecord)
	}
	if record.GameID == "" {
		return fmt.Errorf("%w: missing gameId", model.ErrInvalidMoveRecord)
	}
	if record.PlayerID == 0 {
		return fmt.Errorf("%w: missing playerId", model.ErrInvalidMoveRecord)
	}
	if record.Kind == model.ActionSubmitMove && len(record.Placements) == 0 {
		return fmt.Errorf("%w: missing placements", model.ErrInvalidMoveRecord)
	}
	return nil
}

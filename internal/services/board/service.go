package board

import (
	"log/slog"
	"unicode"

	"github.com/mcoot/crosswordduel/internal/model"
)

// Service provides board operations
type Service struct {
	logger *slog.Logger
}

// New creates a new BoardService
func New(logger *slog.Logger) *Service {
	return &Service{
		logger: logger.With(slog.String("component", "board")),
	}
}

// CreateBoard initializes an empty board with the premium layout
func (s *Service) CreateBoard() model.Board {
	return CreateBoard()
}

// Apply commits placements to the board. Every placement is checked
// before any square is written, so a failed apply leaves the board untouched.
func (s *Service) Apply(board *model.Board, placements []model.Placement) error {
	for _, p := range placements {
		if err := s.ValidatePlacement(board, p.Pos()); err != nil {
			return err
		}
		if err := ValidateLetter(p.Face()); err != nil {
			return err
		}
		if p.IsBlank != p.Tile.IsBlank() {
			return model.ErrInvalidLetter
		}
	}

	for _, p := range placements {
		sq := board.At(p.Pos())
		sq.Tile = &model.PlacedTile{Tile: p.Tile, Face: unicode.ToUpper(p.Face())}
	}
	s.logger.Debug("placements applied", slog.Int("count", len(placements)))
	return nil
}

// ValidatePlacement checks if a position is valid and empty
func (s *Service) ValidatePlacement(board *model.Board, pos model.Position) error {
	if !pos.Valid() {
		return model.ErrInvalidPosition
	}
	if !board.IsEmpty(pos) {
		return model.ErrCellOccupied
	}
	return nil
}

// ValidateLetter checks if a letter is a valid A-Z character
func ValidateLetter(letter rune) error {
	if !model.IsLetter(unicode.ToUpper(letter)) {
		return model.ErrInvalidLetter
	}
	return nil
}

// Interface for dependency injection
type ServiceInterface interface {
	CreateBoard() model.Board
	Apply(board *model.Board, placements []model.Placement) error
	ValidatePlacement(board *model.Board, pos model.Position) error
}

var _ ServiceInterface = (*Service)(nil)

package scoring

import (
	"log/slog"
	"sort"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/validator"
)

// Service scores validated moves
type Service struct {
	logger *slog.Logger
}

// New creates a new ScoringService
func New(logger *slog.Logger) *Service {
	return &Service{
		logger: logger.With(slog.String("component", "scoring")),
	}
}

// ScoreMove scores every word a move forms. It must be called before the
// placements are applied, since premiums only count on newly covered squares.
// The returned words carry their individual scores.
func (s *Service) ScoreMove(board *model.Board, placements []model.Placement, result *validator.Result) (int, []model.Word) {
	placed := make(map[model.Position]model.Placement, len(placements))
	for _, p := range placements {
		placed[p.Pos()] = p
	}

	words := result.Words()
	total := 0
	for i := range words {
		words[i].Score = s.scoreWord(board, words[i], placed)
		total += words[i].Score
	}

	if len(placements) == model.RackSize {
		total += model.FullRackBonus
	}
	return total, words
}

func (s *Service) scoreWord(board *model.Board, w model.Word, placed map[model.Position]model.Placement) int {
	sum := 0
	wordMultiplier := 1
	for _, pos := range w.Cells {
		if p, ok := placed[pos]; ok {
			sq := board.At(pos)
			sum += p.Tile.Value * sq.Type.LetterMultiplier()
			wordMultiplier *= sq.Type.WordMultiplier()
			continue
		}
		if sq := board.At(pos); sq != nil && sq.Tile != nil {
			sum += sq.Tile.Value
		}
	}
	return sum * wordMultiplier
}

// Ranking returns players sorted by score descending, ties by seat
func (s *Service) Ranking(players []model.Player) []model.Player {
	ranked := append([]model.Player(nil), players...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// DetermineWinner returns the winning seat, or 0 if tied
func (s *Service) DetermineWinner(players []model.Player) model.SeatID {
	if len(players) == 0 {
		return 0
	}

	ranked := s.Ranking(players)
	topScore := ranked[0].Score
	tieCount := 0
	for _, p := range ranked {
		if p.Score == topScore {
			tieCount++
		}
	}

	if tieCount > 1 {
		return 0 // Tie
	}

	return ranked[0].ID
}

// Interface for dependency injection
type ServiceInterface interface {
	ScoreMove(board *model.Board, placements []model.Placement, result *validator.Result) (int, []model.Word)
	Ranking(players []model.Player) []model.Player
	DetermineWinner(players []model.Player) model.SeatID
}

var _ ServiceInterface = (*Service)(nil)

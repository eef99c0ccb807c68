package validator

import (
	"log/slog"
	"strings"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/board"
	"github.com/mcoot/crosswordduel/internal/services/dictionary"
)

// Result describes the words formed by a legal move
type Result struct {
	Main       model.Word
	Cross      []model.Word
	Horizontal bool
}

// Words returns the main word followed by every cross-word
func (r *Result) Words() []model.Word {
	return append([]model.Word{r.Main}, r.Cross...)
}

// Texts returns the text of every formed word
func (r *Result) Texts() []string {
	words := r.Words()
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	return texts
}

// Service checks pending placements against the board and extracts words
type Service struct {
	logger *slog.Logger
}

// New creates a new ValidatorService
func New(logger *slog.Logger) *Service {
	return &Service{
		logger: logger.With(slog.String("component", "validator")),
	}
}

// grid overlays pending placements on the committed board
type grid struct {
	board   *model.Board
	pending map[model.Position]rune
}

func (g *grid) face(pos model.Position) rune {
	if f, ok := g.pending[pos]; ok {
		return f
	}
	return g.board.Face(pos)
}

func (g *grid) occupied(pos model.Position) bool {
	return pos.Valid() && g.face(pos) != 0
}

// wordAt reads the maximal run of occupied cells through pos along an axis
func (g *grid) wordAt(pos model.Position, horizontal bool) model.Word {
	start := pos
	for g.occupied(start.Step(horizontal, -1)) {
		start = start.Step(horizontal, -1)
	}

	var sb strings.Builder
	var cells []model.Position
	for cur := start; g.occupied(cur); cur = cur.Step(horizontal, 1) {
		sb.WriteRune(g.face(cur))
		cells = append(cells, cur)
	}
	return model.Word{Text: sb.String(), Start: start, Horizontal: horizontal, Cells: cells}
}

// Validate runs the ordered legality checks and returns the formed words.
// Rejections are *model.ValidationError except for malformed placements,
// which return ErrInvalidPosition, ErrCellOccupied or ErrInvalidLetter.
func (s *Service) Validate(b *model.Board, placements []model.Placement, words dictionary.WordChecker) (*Result, error) {
	if len(placements) == 0 {
		return nil, model.Reject(model.ErrNoPlacements)
	}

	for _, p := range placements {
		if !p.Pos().Valid() {
			return nil, model.ErrInvalidPosition
		}
		if !b.IsEmpty(p.Pos()) {
			return nil, model.ErrCellOccupied
		}
		if err := board.ValidateLetter(p.Face()); err != nil {
			return nil, err
		}
	}

	g := &grid{board: b, pending: make(map[model.Position]rune, len(placements))}
	for _, p := range placements {
		if _, dup := g.pending[p.Pos()]; dup {
			return nil, model.Reject(model.ErrDuplicateCoordinate)
		}
		g.pending[p.Pos()] = p.Face()
	}

	sameRow, sameCol := true, true
	for _, p := range placements[1:] {
		sameRow = sameRow && p.Y == placements[0].Y
		sameCol = sameCol && p.X == placements[0].X
	}
	if !sameRow && !sameCol {
		return nil, model.Reject(model.ErrNotSingleLine)
	}

	if !b.HasTiles() {
		if _, ok := g.pending[model.Center]; !ok {
			return nil, model.Reject(model.ErrMustCoverCenter)
		}
	} else if !touchesBoard(b, placements) {
		return nil, model.Reject(model.ErrMustConnect)
	}

	// A lone tile shares both axes; its span is trivially contiguous
	horizontal := sameRow
	if err := checkContiguous(g, placements, horizontal); err != nil {
		return nil, err
	}

	result := extract(g, placements, sameRow, sameCol)
	if result.Main.Len() < 2 {
		return nil, model.Reject(model.ErrWordTooShort)
	}

	for _, w := range result.Words() {
		if !words.IsValidWord(w.Text) {
			s.logger.Debug("word rejected", slog.String("word", w.Text))
			return nil, model.RejectWord(w.Text)
		}
	}
	return result, nil
}

func touchesBoard(b *model.Board, placements []model.Placement) bool {
	for _, p := range placements {
		for _, n := range p.Pos().Neighbours() {
			if n.Valid() && !b.IsEmpty(n) {
				return true
			}
		}
	}
	return false
}

func checkContiguous(g *grid, placements []model.Placement, horizontal bool) error {
	lo, hi := axisCoord(placements[0], horizontal), axisCoord(placements[0], horizontal)
	for _, p := range placements[1:] {
		c := axisCoord(p, horizontal)
		lo = min(lo, c)
		hi = max(hi, c)
	}
	for c := lo; c <= hi; c++ {
		pos := model.Position{X: c, Y: placements[0].Y}
		if !horizontal {
			pos = model.Position{X: placements[0].X, Y: c}
		}
		if !g.occupied(pos) {
			return model.Reject(model.ErrGapInLine)
		}
	}
	return nil
}

func axisCoord(p model.Placement, horizontal bool) int {
	if horizontal {
		return p.X
	}
	return p.Y
}

// extract derives the main word and cross-words. A single tile takes the
// longer of its two axes as the main word, preferring horizontal on a tie.
func extract(g *grid, placements []model.Placement, sameRow, sameCol bool) *Result {
	if len(placements) == 1 {
		pos := placements[0].Pos()
		across := g.wordAt(pos, true)
		down := g.wordAt(pos, false)
		main, other := across, down
		if down.Len() > across.Len() {
			main, other = down, across
		}
		result := &Result{Main: main, Horizontal: main.Horizontal}
		if other.Len() >= 2 {
			result.Cross = append(result.Cross, other)
		}
		return result
	}

	horizontal := sameRow && !sameCol
	result := &Result{Main: g.wordAt(placements[0].Pos(), horizontal), Horizontal: horizontal}
	for _, p := range placements {
		if cross := g.wordAt(p.Pos(), !horizontal); cross.Len() >= 2 {
			result.Cross = append(result.Cross, cross)
		}
	}
	return result
}

// Interface for dependency injection
type ServiceInterface interface {
	Validate(b *model.Board, placements []model.Placement, words dictionary.WordChecker) (*Result, error)
}

var _ ServiceInterface = (*Service)(nil)

package request

import (
	"time"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/board"
)

// Placement is one tile of a submitted move
type Placement struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Letter  string `json:"letter"`
	IsBlank bool   `json:"isBlank,omitempty"`
}

// ToModel validates and converts the placement
func (p Placement) ToModel() (model.Placement, error) {
	letters := []rune(p.Letter)
	if len(letters) != 1 {
		return model.Placement{}, model.ErrInvalidLetter
	}
	if err := board.ValidateLetter(letters[0]); err != nil {
		return model.Placement{}, err
	}
	if !(model.Position{X: p.X, Y: p.Y}).Valid() {
		return model.Placement{}, model.ErrInvalidPosition
	}

	placement := model.NewPlacement(p.X, p.Y, letters[0])
	if p.IsBlank {
		placement = model.NewBlankPlacement(p.X, p.Y, letters[0])
	}
	return placement.Normalize(), nil
}

// SubmitMoveRequest is the request body for recording a committed move
type SubmitMoveRequest struct {
	GameID     string           `json:"gameId"`
	PlayerID   int              `json:"playerId"`
	Turn       int              `json:"turn"`
	Kind       model.ActionKind `json:"kind,omitempty"`
	Placements []Placement      `json:"placements"`
	Words      []string         `json:"words,omitempty"`
	Score      int              `json:"score"`
}

// ToModel converts the request into a move record stamped with now.
// An empty kind is taken as a submitted move.
func (r SubmitMoveRequest) ToModel(now time.Time) (*model.MoveRecord, error) {
	record := &model.MoveRecord{
		GameID:    model.GameID(r.GameID),
		PlayerID:  model.SeatID(r.PlayerID),
		Turn:      r.Turn,
		Kind:      r.Kind,
		Words:     r.Words,
		Score:     r.Score,
		Timestamp: now,
	}
	if record.Kind == "" {
		record.Kind = model.ActionSubmitMove
	}
	for _, p := range r.Placements {
		placement, err := p.ToModel()
		if err != nil {
			return nil, err
		}
		record.Placements = append(record.Placements, placement)
	}
	return record, nil
}

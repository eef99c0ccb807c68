package model

import (
	"time"
	"unicode"
)

// Placement is a staged, not yet committed tile on a board square
type Placement struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Tile    Tile `json:"tile"`
	IsBlank bool `json:"isBlank,omitempty"`
	// Letter is the face shown once placed; for blanks it is the represented letter
	Letter rune `json:"letter"`
}

// Pos returns the placement's board position
func (p Placement) Pos() Position {
	return Position{X: p.X, Y: p.Y}
}

// Face returns the letter the placement shows on the board
func (p Placement) Face() rune {
	if p.Letter != 0 {
		return p.Letter
	}
	return p.Tile.Letter
}

// Normalize uppercases the face and derives the tile from it, so a
// placement can only ever consume the tile its face implies
func (p Placement) Normalize() Placement {
	p.Letter = unicode.ToUpper(p.Face())
	if p.IsBlank || p.Tile.IsBlank() {
		p.IsBlank = true
		p.Tile = NewTile(Blank)
	} else {
		p.Tile = NewTile(p.Letter)
	}
	return p
}

// NewPlacement creates a placement of a regular tile
func NewPlacement(x, y int, letter rune) Placement {
	return Placement{X: x, Y: y, Tile: NewTile(letter), Letter: letter}
}

// NewBlankPlacement creates a placement of a blank tile representing a letter
func NewBlankPlacement(x, y int, letter rune) Placement {
	return Placement{X: x, Y: y, Tile: NewTile(Blank), IsBlank: true, Letter: letter}
}

// ActionKind identifies a committed turn action
type ActionKind string

const (
	ActionSubmitMove ActionKind = "submit_move"
	ActionPass       ActionKind = "pass"
	ActionExchange   ActionKind = "exchange"
)

// Action is a committed turn action exchanged between clients
type Action struct {
	Kind       ActionKind  `json:"kind"`
	Placements []Placement `json:"placements,omitempty"`
	Indices    []int       `json:"indices,omitempty"` // Rack indices for exchange
}

// Word is a word formed on the board by a move
type Word struct {
	Text       string     `json:"text"`
	Start      Position   `json:"start"`
	Horizontal bool       `json:"horizontal"`
	Cells      []Position `json:"cells"`
	Score      int        `json:"score"`
}

// Len returns the number of letters in the word
func (w Word) Len() int {
	return len(w.Cells)
}

// MoveRecord is a committed turn written to the move log
type MoveRecord struct {
	GameID     GameID      `json:"gameId"`
	PlayerID   SeatID      `json:"playerId"`
	Turn       int         `json:"turn"`
	Kind       ActionKind  `json:"kind"`
	Placements []Placement `json:"placements"`
	Words      []string    `json:"words,omitempty"`
	Score      int         `json:"score"`
	Timestamp  time.Time   `json:"timestamp"`
}

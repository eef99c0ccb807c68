package model

import "strings"

// BoardSize is the width and height of the board
const BoardSize = 15

// Center is the start square every first move must cover
var Center = Position{X: BoardSize / 2, Y: BoardSize / 2}

// Position identifies a cell on the board
type Position struct {
	X int `json:"x"` // column, 0-indexed from left
	Y int `json:"y"` // row, 0-indexed from top
}

// Valid returns true if the position is within bounds
func (p Position) Valid() bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

// Step returns the neighbouring position along an axis
func (p Position) Step(horizontal bool, delta int) Position {
	if horizontal {
		return Position{X: p.X + delta, Y: p.Y}
	}
	return Position{X: p.X, Y: p.Y + delta}
}

// Neighbours returns the four orthogonal neighbours, including out-of-bounds ones
func (p Position) Neighbours() [4]Position {
	return [4]Position{
		{X: p.X, Y: p.Y - 1},
		{X: p.X - 1, Y: p.Y},
		{X: p.X + 1, Y: p.Y},
		{X: p.X, Y: p.Y + 1},
	}
}

// SquareType is the premium kind of a board square
type SquareType string

const (
	SquareNormal       SquareType = "normal"
	SquareDoubleLetter SquareType = "double_letter"
	SquareTripleLetter SquareType = "triple_letter"
	SquareDoubleWord   SquareType = "double_word"
	SquareTripleWord   SquareType = "triple_word"
	SquareStart        SquareType = "start"
)

// LetterMultiplier returns the multiplier applied to a tile placed on this square
func (t SquareType) LetterMultiplier() int {
	switch t {
	case SquareDoubleLetter:
		return 2
	case SquareTripleLetter:
		return 3
	default:
		return 1
	}
}

// WordMultiplier returns the multiplier applied to a word through this square.
// The start square doubles like a double-word square.
func (t SquareType) WordMultiplier() int {
	switch t {
	case SquareDoubleWord, SquareStart:
		return 2
	case SquareTripleWord:
		return 3
	default:
		return 1
	}
}

// PlacedTile is a tile committed to the board
type PlacedTile struct {
	Tile
	// Face is the letter shown on the board; for blanks it is the chosen letter
	Face rune `json:"face"`
}

// Square is one cell of the board
type Square struct {
	X    int         `json:"x"`
	Y    int         `json:"y"`
	Type SquareType  `json:"type"`
	Tile *PlacedTile `json:"tile,omitempty"`
}

// Board is the shared 15x15 grid
type Board struct {
	Squares [BoardSize][BoardSize]Square `json:"squares"` // Squares[y][x]
}

// At returns the square at a position, or nil when out of bounds
func (b *Board) At(pos Position) *Square {
	if !pos.Valid() {
		return nil
	}
	return &b.Squares[pos.Y][pos.X]
}

// Face returns the letter shown at a position, or 0 if empty or out of bounds
func (b *Board) Face(pos Position) rune {
	sq := b.At(pos)
	if sq == nil || sq.Tile == nil {
		return 0
	}
	return sq.Tile.Face
}

// IsEmpty returns true if the position holds no tile (out of bounds counts as empty)
func (b *Board) IsEmpty(pos Position) bool {
	return b.Face(pos) == 0
}

// TileCount returns the number of tiles on the board
func (b *Board) TileCount() int {
	count := 0
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if b.Squares[y][x].Tile != nil {
				count++
			}
		}
	}
	return count
}

// HasTiles returns true once any tile has been committed
func (b *Board) HasTiles() bool {
	return b.TileCount() > 0
}

// String renders the board with '.' for empty squares
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			face := b.Squares[y][x].Tile
			if face == nil {
				sb.WriteByte('.')
			} else {
				sb.WriteRune(face.Face)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

package board

import "github.com/mcoot/crosswordduel/internal/model"

// Premium layout, one string per row. Digits are multipliers.
var wordMultipliers = [model.BoardSize]string{
	"311111131111113",
	"121111111111121",
	"112111111111211",
	"111211111112111",
	"111121111121111",
	"111111111111111",
	"111111111111111",
	"311111121111113",
	"111111111111111",
	"111111111111111",
	"111121111121111",
	"111211111112111",
	"112111111111211",
	"121111111111121",
	"311111131111113",
}

var letterMultipliers = [model.BoardSize]string{
	"111211111112111",
	"111113111311111",
	"111111212111111",
	"211111121111112",
	"111111111111111",
	"131113111311131",
	"112111212111211",
	"111211111112111",
	"112111212111211",
	"131113111311131",
	"111111111111111",
	"211111121111112",
	"111111212111111",
	"111113111311111",
	"111211111112111",
}

// squareTypeAt returns the fixed premium type of a square
func squareTypeAt(x, y int) model.SquareType {
	if x == model.Center.X && y == model.Center.Y {
		return model.SquareStart
	}
	switch wordMultipliers[y][x] {
	case '2':
		return model.SquareDoubleWord
	case '3':
		return model.SquareTripleWord
	}
	switch letterMultipliers[y][x] {
	case '2':
		return model.SquareDoubleLetter
	case '3':
		return model.SquareTripleLetter
	}
	return model.SquareNormal
}

// CreateBoard returns an empty board with the fixed premium layout
func CreateBoard() model.Board {
	var b model.Board
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			b.Squares[y][x] = model.Square{X: x, Y: y, Type: squareTypeAt(x, y)}
		}
	}
	return b
}

package model

// Blank is the letter carried by a blank tile while it sits in a rack or bag
const Blank rune = '?'

// TotalTiles is the number of tiles in a full bag built from the canonical distribution
const TotalTiles = 100

// Tile is a single lettered tile
type Tile struct {
	Letter rune `json:"letter"` // 'A'-'Z' or Blank
	Value  int  `json:"value"`
}

// IsBlank returns true if the tile is a blank
func (t Tile) IsBlank() bool {
	return t.Letter == Blank
}

// LetterSpec is one row of the tile distribution table
type LetterSpec struct {
	Letter rune
	Count  int
	Value  int
}

// Distribution is the canonical 100-tile English distribution
var Distribution = []LetterSpec{
	{'A', 9, 1}, {'B', 2, 3}, {'C', 2, 3}, {'D', 4, 2}, {'E', 12, 1},
	{'F', 2, 4}, {'G', 3, 2}, {'H', 2, 4}, {'I', 9, 1}, {'J', 1, 8},
	{'K', 1, 5}, {'L', 4, 1}, {'M', 2, 3}, {'N', 6, 1}, {'O', 8, 1},
	{'P', 2, 3}, {'Q', 1, 10}, {'R', 6, 1}, {'S', 4, 1}, {'T', 6, 1},
	{'U', 4, 1}, {'V', 2, 4}, {'W', 2, 4}, {'X', 1, 8}, {'Y', 2, 4},
	{'Z', 1, 10}, {Blank, 2, 0},
}

// LetterValue returns the fixed value of a letter, 0 for blanks and unknown letters
func LetterValue(letter rune) int {
	for _, spec := range Distribution {
		if spec.Letter == letter {
			return spec.Value
		}
	}
	return 0
}

// NewTile creates a tile carrying its canonical value
func NewTile(letter rune) Tile {
	return Tile{Letter: letter, Value: LetterValue(letter)}
}

// IsLetter returns true for an uppercase A-Z letter
func IsLetter(letter rune) bool {
	return letter >= 'A' && letter <= 'Z'
}

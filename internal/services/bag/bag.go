package bag

import (
	"github.com/mcoot/crosswordduel/internal/dependencies/random"
	"github.com/mcoot/crosswordduel/internal/model"
)

// Bag is the shuffled pool of undrawn tiles. Draws pop from the end.
type Bag struct {
	tiles []model.Tile
}

// Build expands the canonical distribution and shuffles it uniformly
func Build(rnd random.Random) *Bag {
	tiles := make([]model.Tile, 0, model.TotalTiles)
	for _, spec := range model.Distribution {
		for i := 0; i < spec.Count; i++ {
			tiles = append(tiles, model.Tile{Letter: spec.Letter, Value: spec.Value})
		}
	}
	rnd.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	return &Bag{tiles: tiles}
}

// FromTiles wraps an existing tile sequence, e.g. from a restored snapshot
func FromTiles(tiles []model.Tile) *Bag {
	return &Bag{tiles: tiles}
}

// Draw removes up to n tiles from the end. It returns fewer once the bag
// runs short and never fails.
func (b *Bag) Draw(n int) []model.Tile {
	if n <= 0 {
		return nil
	}
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	start := len(b.tiles) - n
	drawn := make([]model.Tile, n)
	copy(drawn, b.tiles[start:])
	b.tiles = b.tiles[:start]
	return drawn
}

// Return puts exchanged tiles back at the bottom of the bag, so they are
// drawn last. Every client applying the same exchange ends up with the
// same bag.
func (b *Bag) Return(tiles []model.Tile) {
	merged := make([]model.Tile, 0, len(tiles)+len(b.tiles))
	merged = append(merged, tiles...)
	b.tiles = append(merged, b.tiles...)
}

// Len returns the number of tiles left
func (b *Bag) Len() int {
	return len(b.tiles)
}

// IsEmpty returns true once every tile has been drawn
func (b *Bag) IsEmpty() bool {
	return len(b.tiles) == 0
}

// Tiles returns the remaining tiles in draw order (last is drawn first)
func (b *Bag) Tiles() []model.Tile {
	out := make([]model.Tile, len(b.tiles))
	copy(out, b.tiles)
	return out
}

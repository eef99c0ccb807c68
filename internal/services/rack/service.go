package rack

import (
	"log/slog"
	"sort"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/bag"
)

// Service manages player racks
type Service struct {
	logger *slog.Logger
}

// New creates a new RackService
func New(logger *slog.Logger) *Service {
	return &Service{
		logger: logger.With(slog.String("component", "rack")),
	}
}

// matchIndices finds one distinct rack index per placement. Blank
// placements match blank tiles only, whatever letter they represent.
func matchIndices(r *model.Rack, placements []model.Placement) ([]int, bool) {
	used := make([]bool, len(r.Tiles))
	indices := make([]int, 0, len(placements))
	for _, p := range placements {
		want := p.Tile.Letter
		if p.IsBlank {
			want = model.Blank
		}
		found := -1
		for i, t := range r.Tiles {
			if !used[i] && t.Letter == want {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		used[found] = true
		indices = append(indices, found)
	}
	return indices, true
}

// Has reports whether the rack holds a tile for every placement
func (s *Service) Has(r *model.Rack, placements []model.Placement) bool {
	_, ok := matchIndices(r, placements)
	return ok
}

// RemoveForPlacement removes one matching tile per placement. On
// ErrRackMismatch the rack is left unchanged.
func (s *Service) RemoveForPlacement(r *model.Rack, placements []model.Placement) error {
	indices, ok := matchIndices(r, placements)
	if !ok {
		s.logger.Error("rack mismatch",
			slog.String("rack", r.String()),
			slog.Int("placements", len(placements)))
		return model.ErrRackMismatch
	}
	removeIndices(r, indices)
	return nil
}

// Refill draws from the bag up to the rack cap and returns how many were drawn
func (s *Service) Refill(r *model.Rack, b *bag.Bag) int {
	drawn := b.Draw(r.Missing())
	r.Tiles = append(r.Tiles, drawn...)
	return len(drawn)
}

// Exchange swaps the tiles at the given rack indices for fresh bag draws.
// Replacements are drawn before the exchanged tiles go back into the bag.
func (s *Service) Exchange(r *model.Rack, indices []int, b *bag.Bag) error {
	if err := s.CheckExchange(r, indices, b); err != nil {
		return err
	}

	returned := make([]model.Tile, 0, len(indices))
	for _, i := range indices {
		returned = append(returned, r.Tiles[i])
	}
	removeIndices(r, indices)
	r.Tiles = append(r.Tiles, b.Draw(len(indices))...)
	b.Return(returned)

	s.logger.Debug("tiles exchanged", slog.Int("count", len(indices)))
	return nil
}

// CheckExchange reports whether Exchange would accept the indices without
// touching the rack or bag
func (s *Service) CheckExchange(r *model.Rack, indices []int, b *bag.Bag) error {
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(r.Tiles) || seen[i] {
			return model.ErrInvalidRackIndex
		}
		seen[i] = true
	}
	if b.Len() < len(indices) {
		return model.ErrNotEnoughTiles
	}
	return nil
}

func removeIndices(r *model.Rack, indices []int) {
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, i := range sorted {
		r.Tiles = append(r.Tiles[:i], r.Tiles[i+1:]...)
	}
}

// Interface for dependency injection
type ServiceInterface interface {
	Has(r *model.Rack, placements []model.Placement) bool
	RemoveForPlacement(r *model.Rack, placements []model.Placement) error
	Refill(r *model.Rack, b *bag.Bag) int
	Exchange(r *model.Rack, indices []int, b *bag.Bag) error
	CheckExchange(r *model.Rack, indices []int, b *bag.Bag) error
}

var _ ServiceInterface = (*Service)(nil)

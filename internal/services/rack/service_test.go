package rack

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/bag"
	"github.com/mcoot/crosswordduel/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(testutil.NopLogger())
}

func rackOf(letters string) *model.Rack {
	r := &model.Rack{}
	for _, l := range letters {
		r.Tiles = append(r.Tiles, model.NewTile(l))
	}
	return r
}

func bagOf(letters string) *bag.Bag {
	tiles := make([]model.Tile, 0, len(letters))
	for _, l := range letters {
		tiles = append(tiles, model.NewTile(l))
	}
	return bag.FromTiles(tiles)
}

// RemoveForPlacement tests

func (s *ServiceSuite) TestRemoveForPlacementRemovesMatchingTiles() {
	r := rackOf("CATSXYZ")
	err := s.service.RemoveForPlacement(r, []model.Placement{
		model.NewPlacement(7, 7, 'C'),
		model.NewPlacement(8, 7, 'A'),
		model.NewPlacement(9, 7, 'T'),
	})
	s.Require().NoError(err)
	s.Equal("SXYZ", r.String())
}

func (s *ServiceSuite) TestRemoveForPlacementBlankRemovesBlankNotLetter() {
	r := rackOf("Q?ABCDE")
	err := s.service.RemoveForPlacement(r, []model.Placement{model.NewBlankPlacement(7, 7, 'Q')})
	s.Require().NoError(err)
	s.Equal("QABCDE", r.String())
}

func (s *ServiceSuite) TestRemoveForPlacementDuplicateLetters() {
	r := rackOf("EEABCDF")
	err := s.service.RemoveForPlacement(r, []model.Placement{
		model.NewPlacement(7, 7, 'E'),
		model.NewPlacement(8, 7, 'E'),
	})
	s.Require().NoError(err)
	s.Equal("ABCDF", r.String())
}

func (s *ServiceSuite) TestRemoveForPlacementMismatchLeavesRack() {
	r := rackOf("CATSXYZ")
	err := s.service.RemoveForPlacement(r, []model.Placement{
		model.NewPlacement(7, 7, 'C'),
		model.NewPlacement(8, 7, 'Q'),
	})
	s.ErrorIs(err, model.ErrRackMismatch)
	s.Equal("CATSXYZ", r.String())
}

func (s *ServiceSuite) TestRemoveForPlacementBlankWithoutBlankFails() {
	r := rackOf("QABCDEF")
	err := s.service.RemoveForPlacement(r, []model.Placement{model.NewBlankPlacement(7, 7, 'Q')})
	s.ErrorIs(err, model.ErrRackMismatch)
	s.Equal(7, r.Len())
}

func (s *ServiceSuite) TestHas() {
	r := rackOf("CAT")
	s.True(s.service.Has(r, []model.Placement{model.NewPlacement(0, 0, 'T')}))
	s.False(s.service.Has(r, []model.Placement{
		model.NewPlacement(0, 0, 'T'),
		model.NewPlacement(1, 0, 'T'),
	}))
}

// Refill tests

func (s *ServiceSuite) TestRefillToCap() {
	r := rackOf("AB")
	b := bagOf("CDEFGHIJ")
	drawn := s.service.Refill(r, b)
	s.Equal(5, drawn)
	s.Equal(model.RackSize, r.Len())
	s.Equal(3, b.Len())
}

func (s *ServiceSuite) TestRefillShortBagLeavesRackShort() {
	r := rackOf("AB")
	b := bagOf("CD")
	drawn := s.service.Refill(r, b)
	s.Equal(2, drawn)
	s.Equal(4, r.Len())
	s.True(b.IsEmpty())
}

func (s *ServiceSuite) TestRefillFullRackDrawsNothing() {
	r := rackOf("ABCDEFG")
	b := bagOf("HI")
	s.Equal(0, s.service.Refill(r, b))
	s.Equal(2, b.Len())
}

// Exchange tests

func (s *ServiceSuite) TestExchangeSwapsTiles() {
	r := rackOf("ABCDEFG")
	b := bagOf("XYZ")

	err := s.service.Exchange(r, []int{0, 2}, b)
	s.Require().NoError(err)

	s.Equal(model.RackSize, r.Len())
	s.Equal("BDEFGYZ", r.String())
	s.Equal(3, b.Len())

	s.Equal([]model.Tile{model.NewTile('A'), model.NewTile('C'), model.NewTile('X')}, b.Tiles())
}

func (s *ServiceSuite) TestExchangeNotEnoughTiles() {
	r := rackOf("ABCDEFG")
	b := bagOf("X")
	err := s.service.Exchange(r, []int{0, 1}, b)
	s.ErrorIs(err, model.ErrNotEnoughTiles)
	s.Equal("ABCDEFG", r.String())
}

func (s *ServiceSuite) TestExchangeInvalidIndex() {
	r := rackOf("ABCDEFG")
	b := bagOf("XYZ")
	s.ErrorIs(s.service.Exchange(r, []int{7}, b), model.ErrInvalidRackIndex)
	s.ErrorIs(s.service.Exchange(r, []int{1, 1}, b), model.ErrInvalidRackIndex)
	s.Equal("ABCDEFG", r.String())
}

func (s *ServiceSuite) TestCheckExchangeLeavesRackAndBag() {
	r := rackOf("ABCDEFG")
	b := bagOf("XY")

	s.NoError(s.service.CheckExchange(r, []int{0, 6}, b))
	s.ErrorIs(s.service.CheckExchange(r, []int{-1}, b), model.ErrInvalidRackIndex)
	s.ErrorIs(s.service.CheckExchange(r, []int{3, 3}, b), model.ErrInvalidRackIndex)
	s.ErrorIs(s.service.CheckExchange(r, []int{0, 1, 2}, b), model.ErrNotEnoughTiles)

	s.Equal("ABCDEFG", r.String())
	s.Equal(2, b.Len())
}

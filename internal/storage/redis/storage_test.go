package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crosswordduel/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.MoveLogTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func record(game model.GameID, seat model.SeatID, turn int) *model.MoveRecord {
	return &model.MoveRecord{
		GameID:   game,
		PlayerID: seat,
		Turn:     turn,
		Kind:     model.ActionSubmitMove,
		Placements: []model.Placement{
			model.NewPlacement(7, 7, 'C'),
			model.NewBlankPlacement(8, 7, 'A'),
			model.NewPlacement(9, 7, 'T'),
		},
		Words:     []string{"CAT"},
		Score:     8,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Move log tests

func (s *StorageSuite) TestAppendAndListMoves() {
	first := record("game-1", 1, 0)
	s.Require().NoError(s.storage.AppendMove(s.ctx, first))
	s.Require().NoError(s.storage.AppendMove(s.ctx, &model.MoveRecord{
		GameID: "game-1", PlayerID: 2, Turn: 1, Kind: model.ActionPass,
	}))

	moves, err := s.storage.ListMoves(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Require().Len(moves, 2)

	s.Equal(first.Placements, moves[0].Placements)
	s.True(moves[0].Placements[1].IsBlank)
	s.True(first.Timestamp.Equal(moves[0].Timestamp))
	s.Equal(model.ActionPass, moves[1].Kind)
}

func (s *StorageSuite) TestAppendMoveSetsTTL() {
	s.Require().NoError(s.storage.AppendMove(s.ctx, record("game-1", 1, 0)))

	ttl := s.mini.TTL(moveLogKey("game-1"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestMoveLogExpires() {
	s.Require().NoError(s.storage.AppendMove(s.ctx, record("game-1", 1, 0)))

	s.mini.FastForward(2 * time.Hour)

	moves, err := s.storage.ListMoves(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Empty(moves)
}

func (s *StorageSuite) TestListMovesUnknownGame() {
	moves, err := s.storage.ListMoves(s.ctx, "nonexistent")
	s.Require().NoError(err)
	s.Empty(moves)
}

func (s *StorageSuite) TestAppendMoveRejectsIncompleteRecord() {
	bad := record("game-1", 1, 0)
	bad.Placements = nil

	err := s.storage.AppendMove(s.ctx, bad)
	s.ErrorIs(err, model.ErrInvalidMoveRecord)
	s.False(s.mini.Exists(moveLogKey("game-1")))
}

func (s *StorageSuite) TestListMovesCorruptEntry() {
	_, err := s.mini.RPush(moveLogKey("game-1"), "not json")
	s.Require().NoError(err)

	_, err = s.storage.ListMoves(s.ctx, "game-1")
	s.Error(err)
}

// Dictionary tests

func (s *StorageSuite) TestDictionaryNotLoaded() {
	_, err := s.storage.GetDictionaryWords(s.ctx)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}

func (s *StorageSuite) TestSaveAndGetDictionaryWords() {
	s.Require().NoError(s.storage.SaveDictionaryWords(s.ctx, []string{"CAT", "AT", "TA"}))

	words, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"CAT", "AT", "TA"}, words)
}

func (s *StorageSuite) TestSaveDictionaryWordsReplaces() {
	s.Require().NoError(s.storage.SaveDictionaryWords(s.ctx, []string{"CAT"}))
	s.Require().NoError(s.storage.SaveDictionaryWords(s.ctx, []string{"DOG"}))

	words, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"DOG"}, words)
}

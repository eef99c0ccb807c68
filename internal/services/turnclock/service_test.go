package turnclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	state   *model.GameState
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(Config{Budget: 3 * time.Second, TickPeriod: time.Second}, testutil.NopLogger())
	s.state = &model.GameState{
		ID:              "game-1",
		Status:          model.GameStatusActive,
		Players:         []model.Player{{ID: 1, Name: "ann"}, {ID: 2, Name: "bob"}},
		CurrentPlayerID: 1,
	}
	s.service.Reset(s.state)
}

func (s *ServiceSuite) TestDefaultConfig() {
	cfg := New(Config{}, testutil.NopLogger()).Config()
	s.Equal(600*time.Second, cfg.Budget)
	s.Equal(time.Second, cfg.TickPeriod)
	s.Equal(int64(600000), cfg.Budget.Milliseconds())
}

func (s *ServiceSuite) TestResetSetsBudget() {
	s.Equal(int64(3000), s.state.Players[0].RemainingMs)
	s.Equal(int64(3000), s.state.Players[1].RemainingMs)
	s.Equal(int64(1000), s.state.TickPeriodMs)
}

func (s *ServiceSuite) TestTickDecrementsCurrentHolderOnly() {
	s.False(s.service.Tick(s.state))
	s.Equal(int64(2000), s.state.Players[0].RemainingMs)
	s.Equal(int64(3000), s.state.Players[1].RemainingMs)
	s.Equal(model.SeatID(1), s.state.CurrentPlayerID)
}

func (s *ServiceSuite) TestExpiryForcesAdvance() {
	s.False(s.service.Tick(s.state))
	s.False(s.service.Tick(s.state))
	s.True(s.service.Tick(s.state))

	s.Equal(int64(0), s.state.Players[0].RemainingMs)
	s.Equal(model.SeatID(2), s.state.CurrentPlayerID)
	s.Equal(1, s.state.Turn)
}

func (s *ServiceSuite) TestAdvanceSkipsExhaustedPlayer() {
	s.state.Players = append(s.state.Players, model.Player{ID: 3, RemainingMs: 1000})
	s.state.Players[1].RemainingMs = 0

	s.True(s.service.Advance(s.state))
	s.Equal(model.SeatID(3), s.state.CurrentPlayerID)
}

func (s *ServiceSuite) TestAdvanceWrapsInSeatOrder() {
	s.state.CurrentPlayerID = 2
	s.True(s.service.Advance(s.state))
	s.Equal(model.SeatID(1), s.state.CurrentPlayerID)
}

func (s *ServiceSuite) TestNeverRotatesOntoSamePlayerTwiceWhileOtherHasTime() {
	s.state.Players[0].RemainingMs = 0
	s.state.CurrentPlayerID = 2

	// Only bob has time: he keeps the turn
	s.True(s.service.Advance(s.state))
	s.Equal(model.SeatID(2), s.state.CurrentPlayerID)

	// Once ann has time again she is next
	s.state.Players[0].RemainingMs = 500
	s.True(s.service.Advance(s.state))
	s.Equal(model.SeatID(1), s.state.CurrentPlayerID)
}

func (s *ServiceSuite) TestAllExhaustedStalls() {
	s.state.Players[0].RemainingMs = 1000
	s.state.Players[1].RemainingMs = 0

	s.False(s.service.Tick(s.state))
	s.Equal(model.SeatID(1), s.state.CurrentPlayerID)
	s.Equal(0, s.state.Turn)

	// Further ticks do nothing
	s.False(s.service.Tick(s.state))
	s.Equal(int64(0), s.state.Players[0].RemainingMs)
	s.Equal(model.SeatID(1), s.state.CurrentPlayerID)
}

func (s *ServiceSuite) TestNextUnordered() {
	s.state.Players = []model.Player{{ID: 2, RemainingMs: 10}, {ID: 1, RemainingMs: 10}}
	s.state.CurrentPlayerID = 1
	next, ok := s.service.Next(s.state)
	s.True(ok)
	s.Equal(model.SeatID(2), next)
}

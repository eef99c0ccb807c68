package turnclock

import (
	"log/slog"
	"sort"
	"time"

	"github.com/mcoot/crosswordduel/internal/model"
)

// Config holds the per-player budget and tick period
type Config struct {
	Budget     time.Duration
	TickPeriod time.Duration
}

// DefaultConfig returns the canonical ten-minute budget with one-second ticks
func DefaultConfig() Config {
	return Config{
		Budget:     model.DefaultTurnBudget,
		TickPeriod: model.DefaultTickPeriod,
	}
}

// Service runs per-player countdown clocks and turn rotation
type Service struct {
	config Config
	logger *slog.Logger
}

// New creates a new TurnClockService
func New(config Config, logger *slog.Logger) *Service {
	if config.Budget <= 0 {
		config.Budget = model.DefaultTurnBudget
	}
	if config.TickPeriod <= 0 {
		config.TickPeriod = model.DefaultTickPeriod
	}
	return &Service{
		config: config,
		logger: logger.With(slog.String("component", "turnclock")),
	}
}

// Config returns the clock configuration
func (s *Service) Config() Config {
	return s.config
}

// Reset gives every player the full budget
func (s *Service) Reset(state *model.GameState) {
	for i := range state.Players {
		state.Players[i].RemainingMs = s.config.Budget.Milliseconds()
	}
	state.TickPeriodMs = s.config.TickPeriod.Milliseconds()
}

// Next returns the seat after the current holder, in ascending seat order
// and wrapping, that still has time. The current holder is considered last.
// It returns false when every player is out of time.
func (s *Service) Next(state *model.GameState) (model.SeatID, bool) {
	seats := make([]model.Player, len(state.Players))
	copy(seats, state.Players)
	sort.Slice(seats, func(i, j int) bool { return seats[i].ID < seats[j].ID })

	start := 0
	for i, p := range seats {
		if p.ID == state.CurrentPlayerID {
			start = i + 1
			break
		}
	}
	for k := 0; k < len(seats); k++ {
		p := seats[(start+k)%len(seats)]
		if p.HasTime() {
			return p.ID, true
		}
	}
	return 0, false
}

// Advance hands the turn to the next seat with time. When every player is
// exhausted the holder is left unchanged and false is returned.
func (s *Service) Advance(state *model.GameState) bool {
	next, ok := s.Next(state)
	if !ok {
		s.logger.Warn("all clocks exhausted, turn rotation stalled",
			slog.String("game_id", string(state.ID)))
		return false
	}
	state.CurrentPlayerID = next
	state.Turn++
	return true
}

// Tick charges one tick period to the current holder. It returns true when
// the holder ran out of time on this tick and the turn was forced onward.
func (s *Service) Tick(state *model.GameState) bool {
	current := state.CurrentPlayer()
	if current == nil || !current.HasTime() {
		return false
	}

	current.RemainingMs -= s.config.TickPeriod.Milliseconds()
	if current.RemainingMs > 0 {
		return false
	}
	current.RemainingMs = 0

	s.logger.Info("clock expired",
		slog.String("game_id", string(state.ID)),
		slog.Int("seat", int(current.ID)))
	return s.Advance(state)
}

// Interface for dependency injection
type ServiceInterface interface {
	Reset(state *model.GameState)
	Next(state *model.GameState) (model.SeatID, bool)
	Advance(state *model.GameState) bool
	Tick(state *model.GameState) bool
}

var _ ServiceInterface = (*Service)(nil)

package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/crosswordduel/internal/dependencies/clock"
)

// Runner drives a controller's turn clock from a ticker
type Runner struct {
	controller *Controller
	clock      clock.Clock
	period     time.Duration
	logger     *slog.Logger

	// OnAdvance is called after a tick forces the turn onward
	OnAdvance func()
}

// NewRunner creates a Runner ticking the controller's clock at its
// configured period
func NewRunner(controller *Controller, logger *slog.Logger) *Runner {
	return &Runner{
		controller: controller,
		clock:      controller.clock,
		period:     controller.services.TurnClock.Config().TickPeriod,
		logger:     logger.With(slog.String("component", "game_runner")),
	}
}

// Run ticks until the context is cancelled
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.period)
	defer ticker.Stop()

	r.logger.Debug("turn clock running", slog.Duration("period", r.period))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			if r.controller.Tick() && r.OnAdvance != nil {
				r.OnAdvance()
			}
		}
	}
}

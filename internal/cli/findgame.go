package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/crosswordduel/internal/api"
	"github.com/mcoot/crosswordduel/internal/matchmaking"
	"github.com/mcoot/crosswordduel/internal/session"
)

func newFindGameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "findgame <identity>",
		Short: "Wait in matchmaking until paired with an opponent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := args[0]
			out := NewOutput(cfg.Output)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			onWaiting := func(text string) {
				if cfg.Output != "json" {
					fmt.Fprintln(os.Stderr, text)
				}
			}

			start, err := session.FindGame(ctx, cfg.WebsocketURL(api.MatchmakingPath), identity, onWaiting, cliLogger())
			if err != nil {
				return err
			}

			out.Print(MatchResult{
				RoomID:  start.RoomID,
				Player1: start.Player1,
				Player2: start.Player2,
				Seat:    int(matchmaking.PreferredSeat(identity, start)),
			})
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/board"
)

func newBoardCmd() *cobra.Command {
	var gameID string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the premium layout, or a game rebuilt from its move log",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := BoardView{Board: board.CreateBoard()}

			if gameID != "" {
				list, err := fetchMoves(gameID)
				if err != nil {
					return err
				}
				if err := replayMoves(&view.Board, list.Moves); err != nil {
					return err
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(view)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Replay the recorded moves of this game")

	return cmd
}

// replayMoves lays the tiles of every submitted move on the board. A move
// logged by both clients of a game is only applied once.
func replayMoves(b *model.Board, moves []MoveRecord) error {
	svc := board.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	applied := make(map[int]bool)

	for _, m := range moves {
		if m.Kind != string(model.ActionSubmitMove) || applied[m.Turn] {
			continue
		}
		applied[m.Turn] = true

		placements := make([]model.Placement, 0, len(m.Placements))
		for _, p := range m.Placements {
			letters := []rune(p.Letter)
			if len(letters) != 1 {
				return fmt.Errorf("turn %d: %w", m.Turn, model.ErrInvalidLetter)
			}
			if p.IsBlank {
				placements = append(placements, model.NewBlankPlacement(p.X, p.Y, letters[0]))
			} else {
				placements = append(placements, model.NewPlacement(p.X, p.Y, letters[0]))
			}
		}
		if err := svc.Apply(b, placements); err != nil {
			return fmt.Errorf("turn %d: %w", m.Turn, err)
		}
	}
	return nil
}

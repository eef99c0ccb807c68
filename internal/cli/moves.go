package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newMovesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moves",
		Short: "Inspect and append to the move log",
	}

	cmd.AddCommand(newMovesListCmd())
	cmd.AddCommand(newMovesRecordCmd())

	return cmd
}

func newMovesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <game>",
		Short: "List the recorded moves of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := fetchMoves(args[0])
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(list)
			return nil
		},
	}
}

func fetchMoves(gameID string) (MoveList, error) {
	var result MoveList
	err := client.Get("/api/v1/games/"+url.PathEscape(gameID)+"/moves", &result)
	return result, err
}

func newMovesRecordCmd() *cobra.Command {
	var (
		gameID string
		seat   int
		turn   int
		kind   string
		tiles  []string
		words  []string
		score  int
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append a move to the log",
		Long: `Append a move record to the server's move log.

Tiles are given as X,Y,LETTER with an optional ,blank suffix, e.g.
  crosswordduel moves record --game g1 --seat 1 --tile 7,7,Z --tile 8,7,A,blank`,
		RunE: func(cmd *cobra.Command, args []string) error {
			placements := make([]Placement, 0, len(tiles))
			for _, t := range tiles {
				p, err := parseTile(t)
				if err != nil {
					return err
				}
				placements = append(placements, p)
			}

			body := map[string]any{
				"gameId":     gameID,
				"playerId":   seat,
				"turn":       turn,
				"kind":       kind,
				"placements": placements,
				"words":      words,
				"score":      score,
			}

			var result RecordResult
			if err := client.Post("/api/v1/moves", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Game ID")
	cmd.Flags().IntVar(&seat, "seat", 0, "Seat of the player who moved")
	cmd.Flags().IntVar(&turn, "turn", 0, "Turn number")
	cmd.Flags().StringVar(&kind, "kind", "submit_move", "Move kind: submit_move, pass, exchange")
	cmd.Flags().StringArrayVar(&tiles, "tile", nil, "Placed tile as X,Y,LETTER[,blank] (repeatable)")
	cmd.Flags().StringSliceVar(&words, "word", nil, "Words formed (repeatable)")
	cmd.Flags().IntVar(&score, "score", 0, "Points scored")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("seat")

	return cmd
}

// parseTile parses X,Y,LETTER[,blank]
func parseTile(s string) (Placement, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 3 || len(parts) > 4 {
		return Placement{}, fmt.Errorf("invalid tile %q: want X,Y,LETTER[,blank]", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Placement{}, fmt.Errorf("invalid tile %q: bad column", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Placement{}, fmt.Errorf("invalid tile %q: bad row", s)
	}
	p := Placement{X: x, Y: y, Letter: strings.ToUpper(strings.TrimSpace(parts[2]))}
	if len(parts) == 4 {
		if strings.TrimSpace(parts[3]) != "blank" {
			return Placement{}, fmt.Errorf("invalid tile %q: unknown suffix", s)
		}
		p.IsBlank = true
	}
	return p, nil
}

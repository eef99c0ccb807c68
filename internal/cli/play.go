package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/mcoot/crosswordduel/internal/api"
	"github.com/mcoot/crosswordduel/internal/factory"
	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/game"
)

const playUsage = `commands:
  place <x> <y> <letter> [blank]  stage a rack tile, or a blank showing <letter>
  undo                            take back the last staged tile
  clear                           take back every staged tile
  submit                          play the staged tiles
  pass                            give up the turn
  exchange <i> [<j> ...]          swap the rack tiles at these positions
  board                           show the board with staged tiles
  status                          show scores, clocks and your rack
  help                            show this list
  quit                            leave the room`

// Play command kinds
const (
	playPlace    = "place"
	playUndo     = "undo"
	playClear    = "clear"
	playSubmit   = "submit"
	playPass     = "pass"
	playExchange = "exchange"
	playBoard    = "board"
	playStatus   = "status"
	playHelp     = "help"
	playQuit     = "quit"
)

var errQuit = errors.New("quit")

// playCommand is one parsed line of interactive input
type playCommand struct {
	Kind      string
	Placement model.Placement
	Indices   []int
}

func newPlayCmd() *cobra.Command {
	var (
		name           string
		seat           int
		dictionaryPath string
	)

	cmd := &cobra.Command{
		Use:   "play <room>",
		Short: "Join a room and play from the terminal",
		Long: `play joins a relay room with its own copy of the game and reads moves
from standard input, one command per line. Both players must use the same
dictionary. Type "help" once joined for the command list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dictionaryPath == "" {
				return fmt.Errorf("--dictionary is required")
			}
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			app, err := factory.New(factory.Config{
				DictionaryPath: dictionaryPath,
				Logger:         cliLogger(),
			})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sess := app.NewSession(args[0])
			done := make(chan error, 1)
			go func() {
				done <- sess.Dial(ctx, cfg.WebsocketURL(api.RelayPath), name, model.SeatID(seat))
			}()

			p := &player{controller: sess.Controller(), out: cmd.OutOrStdout()}
			go func() {
				p.loop(ctx, cmd.InOrStdin())
				cancel()
			}()

			err = <-done
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlags)
	fs.StringVar(&name, "name", "", "display name in the room (env: CROSSWORDDUEL_NAME)")
	fs.IntVar(&seat, "seat", 0, "preferred seat, 1 or 2; 0 takes the first free (env: CROSSWORDDUEL_SEAT)")
	fs.StringVar(&dictionaryPath, "dictionary", "", "word list, one word per line (env: CROSSWORDDUEL_DICTIONARY)")

	return cmd
}

// parsePlayCommand reads one line of interactive input
func parsePlayCommand(line string) (playCommand, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return playCommand{}, fmt.Errorf("empty command")
	}
	cmd := playCommand{Kind: fields[0]}
	args := fields[1:]

	switch cmd.Kind {
	case playPlace:
		if len(args) != 3 && !(len(args) == 4 && args[3] == "blank") {
			return playCommand{}, fmt.Errorf("usage: place <x> <y> <letter> [blank]")
		}
		x, err := strconv.Atoi(args[0])
		if err != nil {
			return playCommand{}, fmt.Errorf("invalid x: %w", err)
		}
		y, err := strconv.Atoi(args[1])
		if err != nil {
			return playCommand{}, fmt.Errorf("invalid y: %w", err)
		}
		if utf8.RuneCountInString(args[2]) != 1 {
			return playCommand{}, model.ErrInvalidLetter
		}
		letter, _ := utf8.DecodeRuneInString(strings.ToUpper(args[2]))
		if len(args) == 4 {
			cmd.Placement = model.NewBlankPlacement(x, y, letter)
		} else {
			cmd.Placement = model.NewPlacement(x, y, letter)
		}

	case playExchange:
		if len(args) == 0 {
			return playCommand{}, fmt.Errorf("usage: exchange <i> [<j> ...]")
		}
		for _, a := range args {
			i, err := strconv.Atoi(a)
			if err != nil {
				return playCommand{}, fmt.Errorf("invalid rack index %q", a)
			}
			cmd.Indices = append(cmd.Indices, i)
		}

	case playUndo, playClear, playSubmit, playPass, playBoard, playStatus, playHelp, playQuit:
		if len(args) != 0 {
			return playCommand{}, fmt.Errorf("%s takes no arguments", cmd.Kind)
		}

	default:
		return playCommand{}, fmt.Errorf("unknown command %q, try help", cmd.Kind)
	}
	return cmd, nil
}

// player drives one seat's controller from typed commands
type player struct {
	controller *game.Controller
	out        io.Writer
}

func (p *player) loop(ctx context.Context, in io.Reader) {
	fmt.Fprintln(p.out, `joined, type "help" for commands`)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, err := parsePlayCommand(line)
		if err == nil {
			err = p.execute(ctx, cmd)
		}
		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			fmt.Fprintf(p.out, "error: %v\n", err)
		}
	}
}

func (p *player) execute(ctx context.Context, cmd playCommand) error {
	c := p.controller

	switch cmd.Kind {
	case playPlace:
		return c.StageAt(cmd.Placement)
	case playUndo:
		if _, ok := c.Backspace(); !ok {
			return model.ErrNoPlacements
		}
		return nil
	case playClear:
		c.ClearPending()
		return nil
	case playSubmit:
		_, err := c.Submit(ctx)
		return err
	case playPass:
		_, err := c.Pass(ctx)
		return err
	case playExchange:
		_, err := c.Exchange(ctx, cmd.Indices)
		return err
	case playBoard:
		p.printBoard()
		return nil
	case playStatus:
		p.printStatus()
		return nil
	case playHelp:
		fmt.Fprintln(p.out, playUsage)
		return nil
	case playQuit:
		return errQuit
	}
	return fmt.Errorf("unknown command %q", cmd.Kind)
}

// printBoard shows the shared board with this seat's staged tiles on top
func (p *player) printBoard() {
	view := BoardView{Board: p.controller.State().Board}
	for _, pl := range p.controller.Pending() {
		sq := &view.Board.Squares[pl.Y][pl.X]
		sq.Tile = &model.PlacedTile{Tile: pl.Tile, Face: pl.Face()}
	}
	NewOutput("text").Print(view)
}

func (p *player) printStatus() {
	state := p.controller.State()
	if state.Status == model.GameStatusLobby {
		fmt.Fprintln(p.out, "waiting for an opponent")
		return
	}
	fmt.Fprintf(p.out, "game %s, turn %d, %d tiles in the bag\n", state.ID, state.Turn, state.TileBagCount)
	for _, pl := range state.Players {
		marker := " "
		if state.IsActive() && pl.ID == state.CurrentPlayerID {
			marker = ">"
		}
		fmt.Fprintf(p.out, "%s seat %d %-12s %4d points  %ds left\n",
			marker, pl.ID, pl.Name, pl.Score, pl.RemainingMs/1000)
	}
	if seat := p.controller.Seat(); seat != 0 {
		if me := state.Player(seat); me != nil {
			fmt.Fprintf(p.out, "rack: %s\n", me.Rack.String())
		}
	}
	if state.Status == model.GameStatusFinished {
		if winner := p.controller.Winner(); winner != 0 {
			fmt.Fprintf(p.out, "game over, seat %d wins\n", winner)
		} else {
			fmt.Fprintln(p.out, "game over, drawn")
		}
	}
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/crosswordduel/internal/api"
	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/session"
)

func newWatchCmd() *cobra.Command {
	var (
		name       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "watch <room>",
		Short: "Join a room as an observer and stream relay messages",
		Long: `Join a relay room and print every message the relay sends.

The watcher takes the next free seat, so joining an empty room or a room
with a free playing seat will occupy that seat.

Messages include:
  - welcome: seat assignment and host flag
  - roster: room members changed
  - request_state: the host is asked for a snapshot
  - full_state: a game snapshot
  - action: a committed turn
  - you_are_host_now: host migrated to this connection

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRoom(args[0], name, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&name, "name", "watcher", "Name shown to the room")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output messages as JSON lines")

	return cmd
}

// RelayEvent is one received relay message
type RelayEvent struct {
	Time    time.Time     `json:"time"`
	Message model.Message `json:"message"`
}

func watchRoom(roomID, name string, jsonOutput bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !jsonOutput {
		fmt.Printf("Watching room %s\n", roomID)
	}

	err := session.Watch(ctx, cfg.WebsocketURL(api.RelayPath), roomID, name, func(msg model.Message) {
		printRelayEvent(msg, jsonOutput)
	}, cliLogger())

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch: %w", err)
	}
	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func printRelayEvent(msg model.Message, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		data, _ := json.Marshal(RelayEvent{Time: now, Message: msg})
		fmt.Println(string(data))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	fmt.Printf("[%s] %s: %s\n", timestamp, msg.Type, describeMessage(msg))
}

// describeMessage summarises a relay message on one line
func describeMessage(msg model.Message) string {
	switch msg.Type {
	case model.MessageWelcome:
		return fmt.Sprintf("seat %d, host %t", msg.PlayerID, msg.IsHost)
	case model.MessageRoster:
		s := ""
		for i, p := range msg.Players {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%d:%s", p.ID, p.Name)
		}
		return s
	case model.MessageRequestState:
		return fmt.Sprintf("for seat %d", msg.TargetPlayerID)
	case model.MessageFullState:
		var state model.GameState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			return fmt.Sprintf("%d bytes", len(msg.Payload))
		}
		return fmt.Sprintf("game %s %s, turn %d, seat %d to play, %d in bag",
			state.ID, state.Status, state.Turn, state.CurrentPlayerID, state.TileBagCount)
	case model.MessageAction:
		var action model.Action
		if err := json.Unmarshal(msg.Action, &action); err != nil {
			return fmt.Sprintf("seat %d: %d bytes", msg.SenderID, len(msg.Action))
		}
		return fmt.Sprintf("seat %d: %s (%d tiles)", msg.SenderID, action.Kind, len(action.Placements)+len(action.Indices))
	default:
		return ""
	}
}

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/game"
)

// Buffer size for messages waiting to be written to the relay
const outboundBufferSize = 64

var (
	ErrClosed       = errors.New("session closed")
	ErrOutboundFull = errors.New("session outbound queue full")
)

// Session binds a local game controller to a relay room. Inbound relay
// messages are fed to Handle; messages for the relay are read from
// Outbound. Local commits are published to the room and applied when the
// relay echoes them back.
type Session struct {
	controller *game.Controller
	roomID     string
	logger     *slog.Logger

	// AutoStart lets the host deal a new game once seats 1 and 2 are filled
	AutoStart bool

	mu     sync.Mutex
	seat   model.SeatID
	isHost bool
	roster []model.RosterEntry
	out    chan model.Message
	closed bool
}

// New creates a session for a room and routes the controller's commits
// through it
func New(controller *game.Controller, roomID string, logger *slog.Logger) *Session {
	s := &Session{
		controller: controller,
		roomID:     roomID,
		logger:     logger.With(slog.String("component", "session"), slog.String("room", roomID)),
		AutoStart:  true,
		out:        make(chan model.Message, outboundBufferSize),
	}
	controller.SetPublisher(s.publish)
	return s
}

// Controller returns the bound game controller
func (s *Session) Controller() *game.Controller {
	return s.controller
}

// Outbound returns the queue of messages for the relay. It is closed by Close.
func (s *Session) Outbound() <-chan model.Message {
	return s.out
}

// Seat returns the seat assigned by the relay, 0 before the welcome
func (s *Session) Seat() model.SeatID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seat
}

// IsHost reports whether this session currently answers state requests
func (s *Session) IsHost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isHost
}

// Roster returns the last roster received
func (s *Session) Roster() []model.RosterEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.RosterEntry(nil), s.roster...)
}

// Close stops queuing outbound messages
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.out)
	}
}

// Handle processes one message from the relay
func (s *Session) Handle(ctx context.Context, msg model.Message) error {
	switch msg.Type {
	case model.MessageWelcome:
		s.mu.Lock()
		s.seat = msg.PlayerID
		s.isHost = msg.IsHost
		s.mu.Unlock()
		s.controller.SetSeat(msg.PlayerID)
		s.logger.Info("joined room",
			slog.Int("seat", int(msg.PlayerID)),
			slog.Bool("host", msg.IsHost))
		return nil

	case model.MessageRoster:
		s.mu.Lock()
		s.roster = msg.Players
		s.mu.Unlock()
		return s.maybeStart()

	case model.MessageHostPromoted:
		s.mu.Lock()
		s.isHost = true
		s.mu.Unlock()
		s.logger.Info("promoted to host")
		return s.maybeStart()

	case model.MessageRequestState:
		if !s.IsHost() {
			return nil
		}
		payload, err := s.controller.Snapshot()
		if err != nil {
			return err
		}
		return s.send(model.Message{
			Type:           model.MessageFullState,
			TargetPlayerID: msg.TargetPlayerID,
			Payload:        payload,
		})

	case model.MessageFullState:
		current, err := s.controller.Snapshot()
		if err == nil && bytes.Equal(current, msg.Payload) {
			return nil
		}
		return s.controller.Restore(msg.Payload)

	case model.MessageAction:
		var action model.Action
		if err := json.Unmarshal(msg.Action, &action); err != nil {
			return fmt.Errorf("decoding action: %w", err)
		}
		_, err := s.controller.ApplyAction(ctx, msg.SenderID, action)
		if err != nil {
			s.logger.Warn("relayed action rejected",
				slog.Int("sender", int(msg.SenderID)),
				slog.String("kind", string(action.Kind)),
				slog.String("error", err.Error()))
		}
		return err
	}
	return nil
}

// BroadcastState pushes the local snapshot to every member of the room
func (s *Session) BroadcastState() error {
	payload, err := s.controller.Snapshot()
	if err != nil {
		return err
	}
	return s.send(model.Message{Type: model.MessageFullStateBroadcast, Payload: payload})
}

// onTimeout resyncs the room after the local clock forced the turn on.
// Only the host broadcasts; other members wait for its snapshot.
func (s *Session) onTimeout() {
	if !s.IsHost() {
		return
	}
	s.logger.Info("turn timed out")
	if err := s.BroadcastState(); err != nil {
		s.logger.Warn("timeout state not broadcast", slog.String("error", err.Error()))
	}
}

// maybeStart deals a game when this session hosts a lobby with both
// playing seats filled
func (s *Session) maybeStart() error {
	s.mu.Lock()
	host := s.isHost
	roster := s.roster
	s.mu.Unlock()

	if !s.AutoStart || !host || s.controller.State().Status != model.GameStatusLobby {
		return nil
	}

	names := make([]string, 2)
	for _, entry := range roster {
		if entry.ID.IsPlayingSeat() {
			names[entry.ID-1] = entry.Name
		}
	}
	if names[0] == "" || names[1] == "" {
		return nil
	}

	if err := s.controller.Start(model.GameID(s.roomID), names); err != nil {
		return err
	}
	return s.BroadcastState()
}

func (s *Session) publish(action model.Action) error {
	raw, err := json.Marshal(action)
	if err != nil {
		return err
	}
	return s.send(model.Message{Type: model.MessageAction, Action: raw})
}

func (s *Session) send(msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.out <- msg:
		return nil
	default:
		return ErrOutboundFull
	}
}

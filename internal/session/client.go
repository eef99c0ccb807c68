package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/services/game"
	"github.com/mcoot/crosswordduel/internal/transport/ws"
)

// DeniedError is returned when matchmaking refuses a request
type DeniedError struct {
	Reason model.DeniedReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("matchmaking denied: %s", e.Reason)
}

// Keepalive of connections dialed by this package
var dialKeepalive = ws.DefaultKeepalive

func dial(ctx context.Context, target string, logger *slog.Logger) (*ws.Conn, error) {
	conn, err := ws.Dial(ctx, target, logger)
	if err != nil {
		return nil, err
	}
	conn.SetKeepalive(dialKeepalive)
	return conn, nil
}

// JoinURL builds the relay websocket URL for joining a room
func JoinURL(base, roomID, name string, preferred model.SeatID) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing relay url: %w", err)
	}
	q := u.Query()
	q.Set("room", roomID)
	q.Set("name", name)
	if preferred != 0 {
		q.Set("prefId", strconv.Itoa(int(preferred)))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial joins a relay room over a websocket and runs the session until the
// connection closes or ctx is cancelled
func (s *Session) Dial(ctx context.Context, base, name string, preferred model.SeatID) error {
	target, err := JoinURL(base, s.roomID, name, preferred)
	if err != nil {
		return err
	}
	conn, err := dial(ctx, target, s.logger)
	if err != nil {
		return fmt.Errorf("dialing relay: %w", err)
	}
	return s.Run(ctx, conn)
}

// Run pumps messages between the session and an open relay connection
func (s *Session) Run(ctx context.Context, conn *ws.Conn) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	go func() {
		_ = conn.WriteMessages(s.Outbound())
	}()

	clockCtx, stopClock := context.WithCancel(ctx)
	defer stopClock()
	runner := game.NewRunner(s.controller, s.logger)
	runner.OnAdvance = s.onTimeout
	go func() {
		_ = runner.Run(clockCtx)
	}()

	err := conn.ReadMessages(func(msg model.Message) {
		if err := s.Handle(ctx, msg); err != nil {
			s.logger.Warn("relay message not applied",
				slog.String("type", string(msg.Type)),
				slog.String("error", err.Error()))
		}
	})
	s.Close()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Watch joins a room and passes every relay message to handle without
// taking part in the game
func Watch(ctx context.Context, base, roomID, name string, handle func(model.Message), logger *slog.Logger) error {
	target, err := JoinURL(base, roomID, name, 0)
	if err != nil {
		return err
	}
	conn, err := dial(ctx, target, logger)
	if err != nil {
		return fmt.Errorf("dialing relay: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	// Nothing is sent, but the write pump's pings keep an idle room open
	send := make(chan model.Message)
	defer close(send)
	go func() {
		_ = conn.WriteMessages(send)
	}()

	err = conn.ReadMessages(handle)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// FindGame asks matchmaking for an opponent and waits for the pairing.
// onWaiting is called for every waiting notice and may be nil.
func FindGame(ctx context.Context, matchmakingURL, identity string, onWaiting func(string), logger *slog.Logger) (model.Message, error) {
	conn, err := dial(ctx, matchmakingURL, logger)
	if err != nil {
		return model.Message{}, fmt.Errorf("dialing matchmaking: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	// send stays open until a reply settles the request; its pings keep a
	// long wait in the pool alive
	send := make(chan model.Message, 1)
	send <- model.FindGameMessage(identity)
	closed := false
	finish := func() {
		if !closed {
			closed = true
			close(send)
		}
	}
	defer finish()
	go func() {
		_ = conn.WriteMessages(send)
	}()

	var (
		result    model.Message
		resultErr error
	)
	_ = conn.ReadMessages(func(msg model.Message) {
		if result.Type != "" || resultErr != nil {
			return
		}
		switch msg.Type {
		case model.MessageWaiting:
			if onWaiting != nil {
				onWaiting(msg.Text)
			}
			return
		case model.MessageGameStart:
			result = msg
		case model.MessageDenied:
			resultErr = &DeniedError{Reason: msg.Reason}
		default:
			return
		}
		finish()
	})

	if result.Type == "" && resultErr == nil {
		if ctx.Err() != nil {
			return model.Message{}, ctx.Err()
		}
		return model.Message{}, fmt.Errorf("matchmaking connection closed")
	}
	return result, resultErr
}

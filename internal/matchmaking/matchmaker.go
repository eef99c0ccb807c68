package matchmaking

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/crosswordduel/internal/model"
)

const (
	sendBufferSize = 16
	waitingText    = "Waiting for another player..."
)

// ErrStopped is returned by calls made after Run has returned
var ErrStopped = errors.New("matchmaker stopped")

// Client is one matchmaking connection
type Client struct {
	send     chan model.Message
	identity string
}

// Send returns the client's outbound queue, closed on disconnect
func (c *Client) Send() <-chan model.Message {
	return c.send
}

// Stats summarises the matchmaking pool
type Stats struct {
	Connections int    `json:"connections"`
	Active      int    `json:"active"`
	Waiting     string `json:"waiting,omitempty"`
}

type eventKind int

const (
	eventConnect eventKind = iota
	eventMessage
	eventDisconnect
)

type event struct {
	kind   eventKind
	client *Client
	msg    model.Message
}

// Matchmaker pairs waiting identities into fresh rooms. Its pool is
// owned by the goroutine running Run.
type Matchmaker struct {
	logger *slog.Logger

	clients map[*Client]bool
	active  map[string]*Client
	waiting *Client

	inbox chan event
	stats chan chan Stats
	done  chan struct{}
}

// New creates a matchmaker; call Run to start processing
func New(logger *slog.Logger) *Matchmaker {
	return &Matchmaker{
		logger:  logger.With(slog.String("component", "matchmaking")),
		clients: make(map[*Client]bool),
		active:  make(map[string]*Client),
		inbox:   make(chan event),
		stats:   make(chan chan Stats),
		done:    make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled
func (m *Matchmaker) Run(ctx context.Context) error {
	m.logger.Info("matchmaker started")
	defer close(m.done)

	for {
		select {
		case ev := <-m.inbox:
			switch ev.kind {
			case eventConnect:
				m.clients[ev.client] = true
			case eventMessage:
				m.handle(ev.client, ev.msg)
			case eventDisconnect:
				m.leave(ev.client)
			}

		case reply := <-m.stats:
			reply <- m.snapshot()

		case <-ctx.Done():
			for c := range m.clients {
				close(c.send)
				delete(m.clients, c)
			}
			m.active = make(map[string]*Client)
			m.waiting = nil
			m.logger.Info("matchmaker stopped")
			return ctx.Err()
		}
	}
}

// Connect registers a new connection
func (m *Matchmaker) Connect() *Client {
	c := &Client{send: make(chan model.Message, sendBufferSize)}
	if !m.submit(event{kind: eventConnect, client: c}) {
		close(c.send)
	}
	return c
}

// Receive queues an inbound message from a client
func (m *Matchmaker) Receive(c *Client, msg model.Message) {
	m.submit(event{kind: eventMessage, client: c, msg: msg})
}

// Disconnect releases the client's identity and waiting slot
func (m *Matchmaker) Disconnect(c *Client) {
	m.submit(event{kind: eventDisconnect, client: c})
}

// Stats reports the current pool
func (m *Matchmaker) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case m.stats <- reply:
	case <-m.done:
		return Stats{}, ErrStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	return <-reply, nil
}

func (m *Matchmaker) submit(ev event) bool {
	select {
	case m.inbox <- ev:
		return true
	case <-m.done:
		return false
	}
}

func (m *Matchmaker) handle(c *Client, msg model.Message) {
	if !m.clients[c] {
		return
	}
	if msg.Type != model.MessageFindGame {
		m.logger.Debug("dropping unknown message", slog.String("type", string(msg.Type)))
		return
	}
	m.findGame(c, strings.TrimSpace(msg.Username))
}

func (m *Matchmaker) findGame(c *Client, identity string) {
	if identity == "" {
		m.deliver(c, model.DeniedMessage(model.DeniedMissingIdentity))
		return
	}

	if holder, ok := m.active[identity]; ok && holder != c {
		m.logger.Info("identity already active", slog.String("identity", identity))
		m.deliver(c, model.DeniedMessage(model.DeniedAlreadyActive))
		return
	}

	if c.identity != "" && c.identity != identity && m.active[c.identity] == c {
		delete(m.active, c.identity)
	}
	c.identity = identity
	m.active[identity] = c

	switch {
	case m.waiting == nil:
		m.waiting = c
		m.deliver(c, model.WaitingMessage(waitingText))

	case m.waiting.identity == identity:
		m.deliver(c, model.WaitingMessage(waitingText))

	default:
		first := m.waiting
		m.waiting = nil
		start := model.GameStartMessage(uuid.NewString(), first.identity, identity)
		m.deliver(first, start)
		m.deliver(c, start)
		m.logger.Info("players paired",
			slog.String("room", start.RoomID),
			slog.String("player1", start.Player1),
			slog.String("player2", start.Player2))
	}
}

func (m *Matchmaker) leave(c *Client) {
	if !m.clients[c] {
		return
	}
	delete(m.clients, c)
	close(c.send)

	if m.waiting == c {
		m.waiting = nil
	}
	if c.identity != "" && m.active[c.identity] == c {
		delete(m.active, c.identity)
	}
}

func (m *Matchmaker) deliver(c *Client, msg model.Message) {
	select {
	case c.send <- msg:
	default:
		m.logger.Warn("message dropped - client buffer full",
			slog.String("identity", c.identity),
			slog.String("type", string(msg.Type)))
	}
}

func (m *Matchmaker) snapshot() Stats {
	stats := Stats{Connections: len(m.clients), Active: len(m.active)}
	if m.waiting != nil {
		stats.Waiting = m.waiting.identity
	}
	return stats
}

// PreferredSeat derives the seat a paired player should request from the
// relay: the player announced first takes seat 1
func PreferredSeat(self string, start model.Message) model.SeatID {
	if self == start.Player1 {
		return model.SeatOne
	}
	return model.SeatTwo
}

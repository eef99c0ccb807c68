package relay

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/mcoot/crosswordduel/internal/model"
)

// Buffer size for outgoing messages per client
const sendBufferSize = 256

// ErrStopped is returned by calls made after Run has returned
var ErrStopped = errors.New("relay stopped")

// Client is one connection to the relay. Its fields are owned by the
// relay's Run goroutine.
type Client struct {
	send chan model.Message

	room        *room
	seat        model.SeatID
	name        string
	connectedAt time.Time
}

// Send returns the client's outbound queue. It is closed when the client
// is disconnected or the relay stops.
func (c *Client) Send() <-chan model.Message {
	return c.send
}

// room is a set of members; members are kept in join order
type room struct {
	id      model.RoomID
	members []*Client
	host    *Client
}

func (rm *room) roster() []model.RosterEntry {
	players := make([]model.RosterEntry, 0, len(rm.members))
	for _, m := range rm.members {
		players = append(players, model.RosterEntry{ID: m.seat, Name: m.name})
	}
	return players
}

func (rm *room) member(seat model.SeatID) *Client {
	for _, m := range rm.members {
		if m.seat == seat {
			return m
		}
	}
	return nil
}

// assignSeat honours a preferred playing seat when free, else takes the
// lowest free seat starting at 1
func (rm *room) assignSeat(preferred model.SeatID) model.SeatID {
	if preferred.IsPlayingSeat() && rm.member(preferred) == nil {
		return preferred
	}
	seat := model.SeatOne
	for rm.member(seat) != nil {
		seat++
	}
	return seat
}

func (rm *room) remove(c *Client) {
	for i, m := range rm.members {
		if m == c {
			rm.members = append(rm.members[:i], rm.members[i+1:]...)
			return
		}
	}
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

// Relay routes messages between the members of each room. All room state
// is owned by the goroutine running Run; every other method hands work to
// it over a channel.
type Relay struct {
	logger *slog.Logger

	clients map[*Client]bool
	rooms   map[model.RoomID]*room

	inbox chan event
	stats chan chan model.RelayStats
	done  chan struct{}
}

// New creates a relay; call Run to start processing
func New(logger *slog.Logger) *Relay {
	return &Relay{
		logger:  logger.With(slog.String("component", "relay")),
		clients: make(map[*Client]bool),
		rooms:   make(map[model.RoomID]*room),
		inbox:   make(chan event),
		stats:   make(chan chan model.RelayStats),
		done:    make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled, then disconnects every client
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay started")
	defer close(r.done)

	for {
		select {
		case ev := <-r.inbox:
			switch ev.kind {
			case eventConnect:
				r.clients[ev.client] = true
			case eventMessage:
				r.handle(ev.client, ev.msg)
			case eventDisconnect:
				r.leave(ev.client)
			}

		case reply := <-r.stats:
			reply <- r.snapshot()

		case <-ctx.Done():
			for c := range r.clients {
				close(c.send)
				delete(r.clients, c)
			}
			r.rooms = make(map[model.RoomID]*room)
			r.logger.Info("relay stopped")
			return ctx.Err()
		}
	}
}

// Connect registers a new connection. The connection joins a room with a
// join message passed to Receive.
func (r *Relay) Connect() *Client {
	c := &Client{
		send:        make(chan model.Message, sendBufferSize),
		connectedAt: time.Now(),
	}
	if !r.submit(event{kind: eventConnect, client: c}) {
		close(c.send)
	}
	return c
}

// Receive queues an inbound message from a client
func (r *Relay) Receive(c *Client, msg model.Message) {
	r.submit(event{kind: eventMessage, client: c, msg: msg})
}

// Disconnect removes a client from its room and closes its queue
func (r *Relay) Disconnect(c *Client) {
	r.submit(event{kind: eventDisconnect, client: c})
}

// Stats reports the live rooms and connection count
func (r *Relay) Stats(ctx context.Context) (model.RelayStats, error) {
	reply := make(chan model.RelayStats, 1)
	select {
	case r.stats <- reply:
	case <-r.done:
		return model.RelayStats{}, ErrStopped
	case <-ctx.Done():
		return model.RelayStats{}, ctx.Err()
	}
	return <-reply, nil
}

func (r *Relay) submit(ev event) bool {
	select {
	case r.inbox <- ev:
		return true
	case <-r.done:
		return false
	}
}

func (r *Relay) handle(c *Client, msg model.Message) {
	if !r.clients[c] {
		return
	}

	if msg.Type == model.MessageJoin {
		r.join(c, msg)
		return
	}

	rm := c.room
	if rm == nil {
		r.logger.Debug("dropping message from client outside a room",
			slog.String("type", string(msg.Type)))
		return
	}

	switch msg.Type {
	case model.MessageFullState:
		if len(msg.Payload) == 0 {
			return
		}
		if target := rm.member(msg.TargetPlayerID); target != nil {
			r.deliver(target, model.FullStateMessage(msg.Payload))
		}

	case model.MessageFullStateBroadcast:
		if len(msg.Payload) == 0 {
			return
		}
		r.broadcast(rm, model.FullStateMessage(msg.Payload))

	case model.MessageAction:
		if len(msg.Action) == 0 {
			return
		}
		r.broadcast(rm, model.ActionMessage(msg.Action, c.seat))

	default:
		r.logger.Debug("dropping unknown message",
			slog.String("room", string(rm.id)),
			slog.String("type", string(msg.Type)))
	}
}

func (r *Relay) join(c *Client, msg model.Message) {
	if c.room != nil || msg.RoomID == "" || msg.Name == "" {
		r.logger.Debug("dropping join", slog.String("room", msg.RoomID))
		return
	}

	id := model.RoomID(msg.RoomID)
	rm, ok := r.rooms[id]
	if !ok {
		rm = &room{id: id}
		r.rooms[id] = rm
		r.logger.Info("room created", slog.String("room", string(id)))
	}

	c.room = rm
	c.name = msg.Name
	c.seat = rm.assignSeat(msg.PreferredID)
	rm.members = append(rm.members, c)
	if rm.host == nil {
		rm.host = c
	}

	r.logger.Info("member joined",
		slog.String("room", string(id)),
		slog.Int("seat", int(c.seat)),
		slog.Bool("host", rm.host == c),
		slog.Int("members", len(rm.members)))

	r.deliver(c, model.WelcomeMessage(c.seat, rm.host == c))
	r.broadcast(rm, model.RosterMessage(rm.roster()))
	if rm.host != c {
		r.deliver(rm.host, model.RequestStateMessage(c.seat))
	}
}

func (r *Relay) leave(c *Client) {
	if !r.clients[c] {
		return
	}
	delete(r.clients, c)
	close(c.send)

	rm := c.room
	if rm == nil {
		return
	}
	c.room = nil
	rm.remove(c)

	r.logger.Info("member left",
		slog.String("room", string(rm.id)),
		slog.Int("seat", int(c.seat)),
		slog.Duration("connection_duration", time.Since(c.connectedAt)),
		slog.Int("members", len(rm.members)))

	if len(rm.members) == 0 {
		delete(r.rooms, rm.id)
		r.logger.Info("room destroyed", slog.String("room", string(rm.id)))
		return
	}

	if rm.host == c {
		rm.host = rm.members[0]
		r.deliver(rm.host, model.HostPromotedMessage())
		r.logger.Info("host migrated",
			slog.String("room", string(rm.id)),
			slog.Int("seat", int(rm.host.seat)))
	}
	r.broadcast(rm, model.RosterMessage(rm.roster()))
}

func (r *Relay) broadcast(rm *room, msg model.Message) {
	for _, m := range rm.members {
		r.deliver(m, msg)
	}
}

func (r *Relay) deliver(c *Client, msg model.Message) {
	select {
	case c.send <- msg:
	default:
		r.logger.Warn("message dropped - client buffer full",
			slog.Int("seat", int(c.seat)),
			slog.String("type", string(msg.Type)))
	}
}

func (r *Relay) snapshot() model.RelayStats {
	stats := model.RelayStats{
		Rooms:       make([]model.RoomStats, 0, len(r.rooms)),
		Connections: len(r.clients),
	}
	for _, rm := range r.rooms {
		var host model.SeatID
		if rm.host != nil {
			host = rm.host.seat
		}
		stats.Rooms = append(stats.Rooms, model.RoomStats{
			ID:      rm.id,
			HostID:  host,
			Members: rm.roster(),
		})
	}
	sort.Slice(stats.Rooms, func(i, j int) bool {
		return stats.Rooms[i].ID < stats.Rooms[j].ID
	})
	return stats
}

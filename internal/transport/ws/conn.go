package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/crosswordduel/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Largest inbound frame accepted; full-state snapshots are the biggest
	maxMessageSize = 1 << 20
)

// Keepalive controls how long a connection may stay silent. A peer only
// stays connected while one side runs WriteMessages, whose pings draw the
// pongs that extend the read deadline.
type Keepalive struct {
	// Time allowed to read the next frame or pong from the peer
	PongWait time.Duration
	// Time between pings; must be less than PongWait
	PingPeriod time.Duration
}

// DefaultKeepalive is applied to every new connection
var DefaultKeepalive = Keepalive{
	PongWait:   60 * time.Second,
	PingPeriod: 54 * time.Second,
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Conn is a websocket carrying JSON model.Message frames.
// ReadMessages and WriteMessages must each run on a single goroutine.
type Conn struct {
	conn      *websocket.Conn
	keepalive Keepalive
	logger    *slog.Logger
}

// Upgrade upgrades an HTTP request to a websocket connection
func Upgrade(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*Conn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newConn(conn, logger), nil
}

// Dial opens a client websocket connection to url
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return newConn(conn, logger), nil
}

func newConn(conn *websocket.Conn, logger *slog.Logger) *Conn {
	return &Conn{
		conn:      conn,
		keepalive: DefaultKeepalive,
		logger:    logger.With(slog.String("remote", conn.RemoteAddr().String())),
	}
}

// ReadMessages decodes inbound frames and passes each to handle until the
// connection fails or closes. Frames that are not valid JSON messages are
// dropped without closing the connection.
func (c *Conn) ReadMessages(handle func(model.Message)) error {
	c.conn.SetReadLimit(maxMessageSize)
	pongWait := c.keepalive.PongWait
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", slog.String("error", err.Error()))
			}
			return err
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg model.Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			c.logger.Debug("dropping malformed message")
			continue
		}
		handle(msg)
	}
}

// WriteMessages writes every message from send until send is closed,
// pinging the peer in between. Closing send closes the connection.
func (c *Conn) WriteMessages(send <-chan model.Message) error {
	ticker := time.NewTicker(c.keepalive.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return err
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// SetKeepalive replaces the connection's keepalive. Call it before starting
// ReadMessages or WriteMessages.
func (c *Conn) SetKeepalive(k Keepalive) {
	c.keepalive = k
}

// Close closes the underlying connection
func (c *Conn) Close() error {
	return c.conn.Close()
}

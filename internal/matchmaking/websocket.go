package matchmaking

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/transport/ws"
)

// ServeWS upgrades the request and attaches the connection to the matchmaker
func (m *Matchmaker) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Upgrade(w, r, m.logger)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := m.Connect()
	go func() {
		_ = conn.WriteMessages(client.Send())
	}()

	_ = conn.ReadMessages(func(msg model.Message) {
		m.Receive(client, msg)
	})
	m.Disconnect(client)
	_ = conn.Close()
}

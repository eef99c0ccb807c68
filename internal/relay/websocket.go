package relay

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/transport/ws"
)

// ServeWS upgrades the request and attaches the connection to the relay.
// When the room and name query parameters are present the connection
// joins that room immediately, otherwise it must send a join message.
func (r *Relay) ServeWS(w http.ResponseWriter, req *http.Request) {
	conn, err := ws.Upgrade(w, req, r.logger)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := r.Connect()
	go func() {
		_ = conn.WriteMessages(client.Send())
	}()

	query := req.URL.Query()
	if roomID, name := query.Get("room"), query.Get("name"); roomID != "" && name != "" {
		r.Receive(client, model.JoinMessage(roomID, name, parseSeat(query.Get("prefId"))))
	}

	_ = conn.ReadMessages(func(msg model.Message) {
		r.Receive(client, msg)
	})
	r.Disconnect(client)
	_ = conn.Close()
}

// parseSeat returns 0 for anything that is not a seat number
func parseSeat(raw string) model.SeatID {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return model.SeatID(n)
}

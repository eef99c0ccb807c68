package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/mcoot/crosswordduel/internal/api/response"
	"github.com/mcoot/crosswordduel/internal/matchmaking"
	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/session"
)

// Side length in pixels of invite QR codes
const qrSize = 320

// RelayStats reports the relay's live rooms
type RelayStats interface {
	Stats(ctx context.Context) (model.RelayStats, error)
}

// MatchmakingStats reports the matchmaking pool
type MatchmakingStats interface {
	Stats(ctx context.Context) (matchmaking.Stats, error)
}

// RoomHandler handles room listing and invites
type RoomHandler struct {
	relay       RelayStats
	matchmaking MatchmakingStats
	relayPath   string
}

// NewRoomHandler creates a new room handler. matchmaking may be nil.
func NewRoomHandler(relay RelayStats, matchmaking MatchmakingStats, relayPath string) *RoomHandler {
	return &RoomHandler{
		relay:       relay,
		matchmaking: matchmaking,
		relayPath:   relayPath,
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	stats, err := h.relay.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	var mm *matchmaking.Stats
	if h.matchmaking != nil {
		s, err := h.matchmaking.Stats(r.Context())
		if err != nil {
			WriteError(w, NewUnavailableError("Matchmaking is not running"))
			return
		}
		mm = &s
	}

	response.JSON(w, http.StatusOK, response.RoomsFromModel(stats, mm))
}

// Invite handles GET /api/v1/rooms/{room}/invite.png
func (h *RoomHandler) Invite(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room"]

	target, err := session.JoinURL(h.baseURL(r), roomID, r.URL.Query().Get("name"), 0)
	if err != nil {
		WriteError(w, NewInvalidRequestError("Invalid room"))
		return
	}

	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Join-URL", target)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// baseURL derives the relay websocket URL, respecting TLS and
// X-Forwarded-Proto
func (h *RoomHandler) baseURL(r *http.Request) string {
	scheme := "ws"
	if r.TLS != nil {
		scheme = "wss"
	}
	switch r.Header.Get("X-Forwarded-Proto") {
	case "https", "wss":
		scheme = "wss"
	case "http", "ws":
		scheme = "ws"
	}
	return scheme + "://" + r.Host + h.relayPath
}

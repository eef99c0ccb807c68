package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/crosswordduel/internal/api/request"
	"github.com/mcoot/crosswordduel/internal/api/response"
	"github.com/mcoot/crosswordduel/internal/dependencies/clock"
	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/storage"
)

// MoveHandler handles the move log endpoints
type MoveHandler struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewMoveHandler creates a new move handler
func NewMoveHandler(store storage.Storage, clk clock.Clock, logger *slog.Logger) *MoveHandler {
	return &MoveHandler{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "move-handler")),
	}
}

// Submit handles POST /api/v1/moves
func (h *MoveHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	record, err := req.ToModel(h.clock.Now())
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.storage.AppendMove(r.Context(), record); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info("move recorded",
		slog.String("game", string(record.GameID)),
		slog.Int("player", int(record.PlayerID)),
		slog.String("kind", string(record.Kind)),
		slog.Int("score", record.Score))

	response.JSON(w, http.StatusCreated, response.SubmitMoveResponse{
		Message: "Move received",
		Move:    response.MoveRecordFromModel(record),
	})
}

// List handles GET /api/v1/games/{game}/moves
func (h *MoveHandler) List(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game"])

	records, err := h.storage.ListMoves(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MoveListFromModel(gameID, records))
}

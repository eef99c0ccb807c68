package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/crosswordduel/internal/api/apierr"
	"github.com/mcoot/crosswordduel/internal/api/handler"
	apimiddleware "github.com/mcoot/crosswordduel/internal/api/middleware"
	"github.com/mcoot/crosswordduel/internal/dependencies/clock"
	"github.com/mcoot/crosswordduel/internal/matchmaking"
	"github.com/mcoot/crosswordduel/internal/middleware"
	"github.com/mcoot/crosswordduel/internal/relay"
	"github.com/mcoot/crosswordduel/internal/services/dictionary"
	"github.com/mcoot/crosswordduel/internal/storage"
)

// Endpoint paths
const (
	APIPrefix       = "/api/v1"
	RelayPath       = "/ws"
	MatchmakingPath = "/ws/matchmaking"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Storage    storage.Storage
	Clock      clock.Clock
	Dictionary dictionary.ServiceInterface
	Relay      *relay.Relay
	Matchmaker *matchmaking.Matchmaker
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	moveHandler := handler.NewMoveHandler(cfg.Storage, cfg.Clock, cfg.Logger)
	var mm handler.MatchmakingStats
	if cfg.Matchmaker != nil {
		mm = cfg.Matchmaker
	}
	roomHandler := handler.NewRoomHandler(cfg.Relay, mm, RelayPath)
	wordHandler := handler.NewWordHandler(cfg.Dictionary)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// Routes hang off the root router: a mux subrouter reports a method
	// mismatch as 404
	r.Use(loggingMiddleware)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)
	api := func(path string, h http.HandlerFunc, method string) {
		r.Handle(APIPrefix+path, recoveryMiddleware(h)).Methods(method)
	}

	// Move log routes
	api("/moves", moveHandler.Submit, http.MethodPost)
	api("/games/{game}/moves", moveHandler.List, http.MethodGet)

	// Room routes
	api("/rooms", roomHandler.List, http.MethodGet)
	api("/rooms/{room}/invite.png", roomHandler.Invite, http.MethodGet)

	// Dictionary lookups
	api("/words/{word}", wordHandler.Check, http.MethodGet)

	// Health check endpoint
	api("/health", healthHandler, http.MethodGet)

	// Websocket endpoints; the logging writer passes hijacking through
	r.HandleFunc(RelayPath, cfg.Relay.ServeWS).Methods(http.MethodGet)
	if cfg.Matchmaker != nil {
		r.HandleFunc(MatchmakingPath, cfg.Matchmaker.ServeWS).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	apierr.WriteError(w, apierr.NewMethodNotAllowedError(r.Method))
}

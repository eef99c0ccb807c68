package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/crosswordduel/internal/dependencies/clock"
	"github.com/mcoot/crosswordduel/internal/dependencies/random"
	"github.com/mcoot/crosswordduel/internal/matchmaking"
	"github.com/mcoot/crosswordduel/internal/relay"
	"github.com/mcoot/crosswordduel/internal/services/board"
	"github.com/mcoot/crosswordduel/internal/services/dictionary"
	"github.com/mcoot/crosswordduel/internal/services/game"
	"github.com/mcoot/crosswordduel/internal/services/rack"
	"github.com/mcoot/crosswordduel/internal/services/scoring"
	"github.com/mcoot/crosswordduel/internal/services/turnclock"
	"github.com/mcoot/crosswordduel/internal/services/validator"
	"github.com/mcoot/crosswordduel/internal/session"
	"github.com/mcoot/crosswordduel/internal/storage"
	"github.com/mcoot/crosswordduel/internal/storage/memory"
	redisstorage "github.com/mcoot/crosswordduel/internal/storage/redis"
	sqlitestorage "github.com/mcoot/crosswordduel/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Rule services
	DictionaryService *dictionary.Service
	BoardService      *board.Service
	RackService       *rack.Service
	ValidatorService  *validator.Service
	ScoringService    *scoring.Service
	TurnClockService  *turnclock.Service

	// Realtime services; both must be started with Run
	Relay      *relay.Relay
	Matchmaker *matchmaking.Matchmaker
}

// Config holds configuration for the application factory
type Config struct {
	// DictionaryPath is the path to the dictionary file (optional)
	// If empty, the dictionary is loaded from storage when present
	DictionaryPath string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// TurnClock holds the per-player budget and tick period (optional)
	TurnClock turnclock.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, clock.New(), random.New(), cfg.TurnClock, logger)

	if err := app.loadDictionary(context.Background(), cfg.DictionaryPath); err != nil {
		_ = store.Close()
		return nil, err
	}

	return app, nil
}

func newStorage(cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlitestorage.New(cfg.SQLitePath, logger)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, clockCfg turnclock.Config, logger *slog.Logger) *App {
	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Logger:            logger,
		DictionaryService: dictionary.New(store, logger),
		BoardService:      board.New(logger),
		RackService:       rack.New(logger),
		ValidatorService:  validator.New(logger),
		ScoringService:    scoring.New(logger),
		TurnClockService:  turnclock.New(clockCfg, logger),
		Relay:             relay.New(logger),
		Matchmaker:        matchmaking.New(logger),
	}
}

// loadDictionary reads the word list from a file, or falls back to the
// copy kept in storage. A missing dictionary is not an error here.
func (a *App) loadDictionary(ctx context.Context, path string) error {
	if path != "" {
		if err := a.DictionaryService.LoadFromFile(ctx, path); err != nil {
			return fmt.Errorf("loading dictionary: %w", err)
		}
		return nil
	}
	err := a.DictionaryService.LoadFromStorage(ctx)
	if err != nil && !errors.Is(err, dictionary.ErrDictionaryNotLoaded) {
		return fmt.Errorf("loading dictionary from storage: %w", err)
	}
	return nil
}

// Services returns the rule services a game controller drives
func (a *App) Services() game.Services {
	return game.Services{
		Board:     a.BoardService,
		Rack:      a.RackService,
		Validator: a.ValidatorService,
		Scoring:   a.ScoringService,
		TurnClock: a.TurnClockService,
	}
}

// NewGameController creates a controller for one client's copy of a game,
// validating words against the dictionary and logging moves to storage
func (a *App) NewGameController() *game.Controller {
	return game.NewController(a.Services(), a.DictionaryService, a.Storage, a.Clock, a.Random, a.Logger)
}

// NewSession creates a relay session bound to a fresh game controller
func (a *App) NewSession(roomID string) *session.Session {
	return session.New(a.NewGameController(), roomID, a.Logger)
}

// Run starts the relay and matchmaking loops and blocks until ctx is
// cancelled
func (a *App) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		_ = a.Matchmaker.Run(ctx)
		close(done)
	}()
	_ = a.Relay.Run(ctx)
	<-done
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/crosswordduel/internal/api"
	"github.com/mcoot/crosswordduel/internal/factory"
	redisstorage "github.com/mcoot/crosswordduel/internal/storage/redis"
)

// ServeConfig holds the server's settings
type ServeConfig struct {
	Bind           string
	Port           int
	Storage        string
	RedisURL       string
	RedisTTL       time.Duration
	SQLitePath     string
	DictionaryPath string
	LogLevel       string
}

func (c *ServeConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	switch c.Storage {
	case factory.StorageTypeMemory, factory.StorageTypeSQLite:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("--redis-url is required with --storage redis")
		}
	default:
		return fmt.Errorf("invalid storage %q: must be memory, redis or sqlite", c.Storage)
	}
	return nil
}

func (c *ServeConfig) logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func newServeCmd() *cobra.Command {
	sc := &ServeConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay, matchmaking and HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sc.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), sc)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlags)
	fs.StringVarP(&sc.Bind, "bind", "b", "", "address to bind to (env: CROSSWORDDUEL_BIND)")
	fs.IntVarP(&sc.Port, "port", "p", 8080, "port to listen on (env: CROSSWORDDUEL_PORT)")
	fs.StringVar(&sc.Storage, "storage", factory.StorageTypeMemory, "move log backend: memory, redis, sqlite (env: CROSSWORDDUEL_STORAGE)")
	fs.StringVar(&sc.RedisURL, "redis-url", "", "redis connection URL (env: CROSSWORDDUEL_REDIS_URL)")
	fs.DurationVar(&sc.RedisTTL, "redis-ttl", redisstorage.DefaultConfig().MoveLogTTL, "expiry of a game's move log in redis, 0 to keep (env: CROSSWORDDUEL_REDIS_TTL)")
	fs.StringVar(&sc.SQLitePath, "sqlite-path", "data/crosswordduel.db", "sqlite database file (env: CROSSWORDDUEL_SQLITE_PATH)")
	fs.StringVar(&sc.DictionaryPath, "dictionary", "", "word list, one word per line (env: CROSSWORDDUEL_DICTIONARY)")
	fs.StringVar(&sc.LogLevel, "log-level", "info", "debug, info, warn or error (env: CROSSWORDDUEL_LOG_LEVEL)")

	return cmd
}

func serve(ctx context.Context, sc *ServeConfig) error {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: sc.logLevel(),
	}))
	slog.SetDefault(logger)

	appCfg := factory.Config{
		DictionaryPath: sc.DictionaryPath,
		Logger:         logger,
		StorageType:    sc.Storage,
		SQLitePath:     sc.SQLitePath,
	}
	if sc.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = sc.RedisURL
		redisCfg.MoveLogTTL = sc.RedisTTL
		appCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(appCfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() { _ = app.Close() }()

	if !app.DictionaryService.IsLoaded() {
		logger.Warn("no dictionary loaded; word lookups will be unavailable")
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Relay and matchmaking run until shutdown
	appDone := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(appDone)
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Storage:    app.Storage,
		Clock:      app.Clock,
		Dictionary: app.DictionaryService,
		Relay:      app.Relay,
		Matchmaker: app.Matchmaker,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = sc.Bind
	serverConfig.Port = sc.Port
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", sc.Storage))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		cancel()
		<-appDone
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	err = server.Shutdown(context.Background())
	<-appDone
	if err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "crosswordduel",
		Short: "Two-player crossword duels over a websocket relay",
		Long: `crosswordduel runs the room relay and matchmaking server, and talks to a
running server for inspection.

Every flag can also be set from the environment as CROSSWORDDUEL_<FLAG>,
for example CROSSWORDDUEL_SERVER or CROSSWORDDUEL_REDIS_URL.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(cmd.Flags())
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.SetNormalizeFunc(normalizeFlags)
	pf.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CROSSWORDDUEL_SERVER)")
	pf.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: CROSSWORDDUEL_OUTPUT)")
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output (env: CROSSWORDDUEL_VERBOSE)")

	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newMovesCmd())
	rootCmd.AddCommand(newBoardCmd())
	rootCmd.AddCommand(newWordCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newFindGameCmd())
	rootCmd.AddCommand(newPlayCmd())

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		NewOutput(cfg.Output).PrintError(err)
		os.Exit(1)
	}
}

// cliLogger logs websocket client diagnostics to stderr when --verbose is set
func cliLogger() *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

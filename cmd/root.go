package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/physiq/internal/app"
	"github.com/abhisek/physiq/internal/config"
	"github.com/abhisek/physiq/internal/logger"
	"github.com/abhisek/physiq/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "physiq",
	Short: "IB physics question generator",
	Long: `physiq generates multiple-choice IB physics questions with a fine-tuned
generation model, refines them with a general-purpose chat model and
validates the result before printing it.`,
	SilenceUsage: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PHYSIQ_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides PHYSIQ_LOG_LEVEL)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PHYSIQ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the event store for read-only reporting commands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadApp reads configuration, applies flag overrides and builds the
// pipeline. The caller must Close the returned App.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	return app.New(cmd.Context(), cfg, log)
}

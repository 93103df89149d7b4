// Package cli provides the sharerapy command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sharerapy/internal/app"
	"sharerapy/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	verbose bool

	cfg         *config.Config
	application *app.App
	closeLog    func() error
)

var rootCmd = &cobra.Command{
	Use:   "sharerapy",
	Short: "Ask questions about therapy reports",
	Long: `Sharerapy answers questions about therapy reports using retrieval-augmented
generation over the indexed report corpus.

The CLI shares configuration (.env / environment) with the API server and
can ask questions, rebuild the vector index, import markdown reports and
seed reference data.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.LogLevel = "debug"
		}

		var logger *slog.Logger
		logger, closeLog = config.NewLogger(cfg)
		slog.SetDefault(logger)

		application, err = app.New(cmd.Context(), cfg, logger, nil)
		if err != nil {
			return err
		}
		return application.EnsureCollection(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			if err := application.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close resources: %v\n", err)
			}
		}
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

// ExecuteContext runs the root command. Cancelling ctx stops long-running commands.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cweiss/showsync/internal/config"
	"github.com/cweiss/showsync/internal/library"
	"github.com/cweiss/showsync/internal/log"
	"github.com/cweiss/showsync/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	cfg        *config.Config
	logger     *slog.Logger
	catalog    *store.SeriesStore
	librarySvc *library.Service
)

var rootCmd = &cobra.Command{
	Use:   "showsync",
	Short: "Keep a local TV series metadata cache in step with TheTVDB",
	Long: `showsync maintains an on-disk metadata cache for the TV series you
follow, downloading from TheTVDB only what changed since the last
synchronization.

Follow series with 'add', then run 'sync' to bring the cache up to
date. The first sync downloads everything; later syncs consult the
provider's change feed and fetch only what moved.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = log.SetupLogger(&cfg.Logging)
		if err != nil {
			// Fall back to null logger if file logging fails
			logger = log.NullLogger()
		}
		slog.SetDefault(logger)

		catalog, err = store.NewSeriesStore(cfg.Library.Path)
		if err != nil {
			return fmt.Errorf("failed to open library: %w", err)
		}
		librarySvc = library.NewService(catalog, cfg.Library.DefaultLanguage, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if catalog != nil {
			return catalog.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

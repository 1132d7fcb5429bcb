package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cweiss/showsync/internal/config"
	"github.com/cweiss/showsync/internal/domain"
	"github.com/cweiss/showsync/internal/sync"
	"github.com/cweiss/showsync/internal/transport"
	"github.com/cweiss/showsync/internal/tui"
	"github.com/cweiss/showsync/internal/tvdb"
)

var (
	syncFull  bool
	syncWatch bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the metadata cache",
	Long: `Synchronize the local metadata cache against TheTVDB change feed.

The first run downloads every followed series; later runs fetch only
what changed since the stored watermark. Passes within 24 hours of a
successful one are skipped. --full forgets the watermark first so the
next pass downloads everything again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.ProviderEnabled(config.ProviderTVDB) && cfg.TVDB.APIKey == "" {
			return errors.New("tvdb.api_key is not set; get one at https://thetvdb.com and add it to the config")
		}

		task, images := buildSyncTask()

		if syncFull {
			if err := sync.NewWatermarkStore(cfg.Cache.Root).Clear(); err != nil {
				return fmt.Errorf("failed to reset watermark: %w", err)
			}
		}

		if syncWatch {
			return watchLoop(ctx, task, images)
		}
		return runOnce(ctx, task, images)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "forget the watermark and re-download everything")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep running, synchronizing on an interval")
	rootCmd.AddCommand(syncCmd)
}

// buildSyncTask wires one task instance. The gate is shared by the feed,
// the bundle fetcher and the poster client so all outbound traffic stays
// within the configured connection budget.
func buildSyncTask() (*sync.Task, *tvdb.ImageClient) {
	gate := transport.NewGate(cfg.TVDB.MaxConnections, cfg.TVDB.RequestsPerSecond)
	httpClient := transport.NewHTTPClient(cfg.TVDB.Timeout)

	feed := tvdb.NewFeed(cfg.TVDB.URL, httpClient, gate, logger)
	fetcher := tvdb.NewClient(cfg.TVDB.URL, cfg.TVDB.APIKey, httpClient, gate, logger)

	task := sync.NewTask(sync.TaskConfig{
		Enabled:         cfg.ProviderEnabled(config.ProviderTVDB),
		CacheDir:        cfg.Cache.Root,
		DefaultLanguage: cfg.Library.DefaultLanguage,
	}, sync.NewWatermarkStore(cfg.Cache.Root), feed, librarySvc, fetcher, logger)

	var images *tvdb.ImageClient
	if cfg.Images.Enabled {
		images = tvdb.NewImageClient(tvdb.NewTemplateImageSource(cfg.Images.URLTemplate), httpClient, gate, logger)
	}
	return task, images
}

// runPass runs one synchronization pass and then tops up missing posters.
func runPass(ctx context.Context, task *sync.Task, images *tvdb.ImageClient, report domain.ProgressFunc) error {
	if err := task.Run(ctx, report); err != nil {
		return err
	}
	downloadPosters(ctx, images)
	return nil
}

func runOnce(ctx context.Context, task *sync.Task, images *tvdb.ImageClient) error {
	run := func(ctx context.Context, report domain.ProgressFunc) error {
		return runPass(ctx, task, images, report)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		model := tui.NewProgressModel(ctx, run)
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return err
		}
		return model.Err()
	}

	return run(ctx, func(pct int) {
		fmt.Printf("sync %d%%\n", pct)
	})
}

func watchLoop(ctx context.Context, task *sync.Task, images *tvdb.ImageClient) error {
	interval := cfg.Sync.CheckInterval
	if interval <= 0 {
		interval = time.Hour
	}
	logger.Info("watch mode started", "interval", interval)
	fmt.Printf("watching for changes every %s; ctrl+c to stop\n", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := runPass(ctx, task, images, func(pct int) {
			logger.Debug("sync progress", "percent", pct)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("sync pass failed", "error", err)
			fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

// downloadPosters fetches missing thumbnails for everything in the cache.
func downloadPosters(ctx context.Context, images *tvdb.ImageClient) {
	if images == nil {
		return
	}
	entries, err := os.ReadDir(cfg.Cache.Root)
	if err != nil {
		logger.Warn("cannot scan cache for posters", "error", err)
		return
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	images.DownloadAll(ctx, cfg.Cache.Root, ids)
}

package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cweiss/showsync/internal/domain"
)

// TaskConfig carries the knobs for one synchronization task.
type TaskConfig struct {
	Enabled         bool   // master switch; a disabled task completes without network work
	CacheDir        string // root holding the watermark file and per-series directories
	DefaultLanguage string // used for series with no preferred language
}

// Task reconciles the local metadata cache against the provider's change
// feed. One Run is one pass: throttle check, feed fetch, plan, download
// loop, watermark commit. The watermark only advances when the pass did not
// abort, so an aborted pass reconsiders the same ids next time.
type Task struct {
	cfg     TaskConfig
	marks   *WatermarkStore
	feed    domain.UpdateFeed
	index   domain.SeriesIndex
	fetcher domain.SeriesFetcher
	logger  *slog.Logger
}

func NewTask(cfg TaskConfig, marks *WatermarkStore, feed domain.UpdateFeed, index domain.SeriesIndex, fetcher domain.SeriesFetcher, logger *slog.Logger) *Task {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	return &Task{
		cfg:     cfg,
		marks:   marks,
		feed:    feed,
		index:   index,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Run executes one synchronization pass. Progress is reported as whole
// percentages, non-decreasing, ending at 100 unless the pass aborts; the
// short-circuit paths (disabled, throttled, empty plan) also report 100.
func (t *Task) Run(ctx context.Context, progress domain.ProgressFunc) error {
	report := func(pct int) {
		if progress != nil {
			progress(pct)
		}
	}

	if !t.cfg.Enabled {
		t.logger.Info("sync disabled, nothing to do")
		report(100)
		return nil
	}
	if t.marks.IsThrottled() {
		t.logger.Info("sync ran recently, skipping")
		report(100)
		return nil
	}

	since, err := t.marks.Read()
	if err != nil {
		return err
	}

	refs, err := t.index.ListRefs()
	if err != nil {
		return fmt.Errorf("list library: %w", err)
	}

	cacheDirs, err := listCacheDirs(t.cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("scan cache: %w", err)
	}

	// First run seeds the watermark from the server clock; afterwards the
	// change feed supplies both the new token and the changed ids.
	var (
		next    string
		changed []string
	)
	if since == "" {
		next, err = t.feed.ServerTime(ctx)
		if err != nil {
			return fmt.Errorf("fetch server time: %w", err)
		}
	} else {
		result, err := t.feed.Changes(ctx, since)
		if err != nil {
			return fmt.Errorf("fetch change feed: %w", err)
		}
		next = result.ServerTime
		changed = result.SeriesIDs
		if changed == nil {
			changed = []string{}
		}
	}

	plan := Plan(cacheDirs, refs, changed)
	t.logger.Info("sync plan computed",
		"mode", runMode(since), "planned", len(plan), "library", len(refs), "cached", len(cacheDirs))

	if err := t.download(ctx, plan, refs, since, report); err != nil {
		return err
	}

	if err := t.marks.Write(next); err != nil {
		return err
	}
	if len(plan) == 0 {
		report(100)
	}

	t.logger.Info("sync pass complete", "synced", len(plan), "watermark", next)
	return nil
}

func runMode(since string) string {
	if since == "" {
		return "full"
	}
	return "incremental"
}

// download walks the plan sequentially. A transient fetch failure is logged
// and the pass moves on; a timeout or cancellation aborts the pass.
func (t *Task) download(ctx context.Context, plan []string, refs []domain.SeriesRef, since string, report func(int)) error {
	total := len(plan)
	for i, id := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := filepath.Join(t.cfg.CacheDir, id)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache dir for %s: %w", id, err)
		}

		for _, lang := range Languages(refs, id, t.cfg.DefaultLanguage) {
			err := t.fetcher.FetchAndUnpack(ctx, id, dir, since, lang)
			if err == nil {
				continue
			}
			if isFatal(err) {
				return fmt.Errorf("fetch %s (%s): %w", id, lang, err)
			}
			t.logger.Warn("series fetch failed, skipping", "id", id, "language", lang, "error", err)
		}

		report((i + 1) * 100 / total)
	}
	return nil
}

// isFatal reports whether a single fetch failure must abort the whole pass.
// Advancing the watermark past a timed-out item would leave its cache
// permanently stale, so timeouts and cancellation escalate.
func isFatal(err error) bool {
	return errors.Is(err, domain.ErrFetchTimedOut) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// listCacheDirs returns the names of the per-series directories under root.
// A missing root means an empty cache.
func listCacheDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

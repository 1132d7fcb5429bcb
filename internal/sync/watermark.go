package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// minSyncInterval is how long a successful pass suppresses the next one.
const minSyncInterval = 24 * time.Hour

// watermarkFile sits alongside the per-series cache directories.
const watermarkFile = "lastupdated"

// WatermarkStore persists the provider's "synchronized as of" token as the
// sole content of a single file under the cache root. The token is opaque:
// it is stored and passed back to the provider verbatim, never interpreted.
type WatermarkStore struct {
	root string
	path string
}

func NewWatermarkStore(root string) *WatermarkStore {
	return &WatermarkStore{
		root: root,
		path: filepath.Join(root, watermarkFile),
	}
}

// IsThrottled reports whether the last successful pass is recent enough
// that no synchronization work should be attempted.
func (w *WatermarkStore) IsThrottled() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < minSyncInterval
}

// LastSync returns when the watermark was last written, if ever.
func (w *WatermarkStore) LastSync() (time.Time, bool) {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Read returns the stored token, or empty when no pass has completed yet.
func (w *WatermarkStore) Read() (string, error) {
	data, err := os.ReadFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read watermark: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write atomically replaces the stored token. The file is staged in the
// same directory so the rename never crosses filesystems.
func (w *WatermarkStore) Write(token string) error {
	if err := os.MkdirAll(w.root, 0755); err != nil {
		return fmt.Errorf("create cache root: %w", err)
	}

	tmp, err := os.CreateTemp(w.root, watermarkFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage watermark: %w", err)
	}
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("stage watermark: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stage watermark: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace watermark: %w", err)
	}
	return nil
}

// Clear forgets the watermark so the next pass runs in first-run mode.
func (w *WatermarkStore) Clear() error {
	err := os.Remove(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatermarkReadMissing(t *testing.T) {
	w := NewWatermarkStore(t.TempDir())

	token, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if token != "" {
		t.Errorf("Read = %q, want empty", token)
	}
}

func TestWatermarkWriteReadRoundTrip(t *testing.T) {
	w := NewWatermarkStore(t.TempDir())

	if err := w.Write("1300000000"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	token, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if token != "1300000000" {
		t.Errorf("Read = %q, want %q", token, "1300000000")
	}
}

func TestWatermarkWriteReplaces(t *testing.T) {
	w := NewWatermarkStore(t.TempDir())

	if err := w.Write("100"); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := w.Write("200"); err != nil {
		t.Fatalf("second Write: %v", err)
	}
	token, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if token != "200" {
		t.Errorf("Read = %q, want %q", token, "200")
	}
}

func TestWatermarkWriteCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache", "nested")
	w := NewWatermarkStore(root)

	if err := w.Write("100"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, watermarkFile)); err != nil {
		t.Errorf("watermark file missing: %v", err)
	}
}

func TestWatermarkWriteLeavesNoStagingFiles(t *testing.T) {
	root := t.TempDir()
	w := NewWatermarkStore(root)

	if err := w.Write("100"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != watermarkFile {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("cache root contains %v, want only %q", names, watermarkFile)
	}
}

func TestWatermarkReadTrimsWhitespace(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, watermarkFile), []byte("1300000000\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w := NewWatermarkStore(root)
	token, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if token != "1300000000" {
		t.Errorf("Read = %q, want %q", token, "1300000000")
	}
}

func TestWatermarkThrottle(t *testing.T) {
	root := t.TempDir()
	w := NewWatermarkStore(root)

	if w.IsThrottled() {
		t.Error("IsThrottled = true with no watermark")
	}

	if err := w.Write("100"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !w.IsThrottled() {
		t.Error("IsThrottled = false right after a write")
	}

	old := time.Now().Add(-25 * time.Hour)
	if err := os.Chtimes(filepath.Join(root, watermarkFile), old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if w.IsThrottled() {
		t.Error("IsThrottled = true for a day-old watermark")
	}
}

func TestWatermarkLastSync(t *testing.T) {
	w := NewWatermarkStore(t.TempDir())

	if _, ok := w.LastSync(); ok {
		t.Error("LastSync reported a time with no watermark")
	}

	if err := w.Write("100"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	ts, ok := w.LastSync()
	if !ok {
		t.Fatal("LastSync = not ok after write")
	}
	if time.Since(ts) > time.Minute {
		t.Errorf("LastSync = %v, want recent", ts)
	}
}

func TestWatermarkClear(t *testing.T) {
	w := NewWatermarkStore(t.TempDir())

	if err := w.Clear(); err != nil {
		t.Fatalf("Clear with no watermark: %v", err)
	}

	if err := w.Write("100"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	token, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if token != "" {
		t.Errorf("Read after Clear = %q, want empty", token)
	}
}

package tvdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/cweiss/showsync/internal/domain"
	"github.com/cweiss/showsync/internal/transport"
)

const posterFile = "poster.jpg"

// TemplateImageSource resolves thumbnail URLs by expanding a configured
// template whose single %s placeholder takes the series id.
type TemplateImageSource struct {
	template string
}

func NewTemplateImageSource(template string) *TemplateImageSource {
	return &TemplateImageSource{template: template}
}

func (s *TemplateImageSource) ResolveURL(ctx context.Context, id string) (string, error) {
	if s.template == "" {
		return "", errors.New("image url template not configured")
	}
	return fmt.Sprintf(s.template, url.PathEscape(id)), nil
}

// ImageClient downloads series thumbnails. It shares the request gate with
// the metadata clients so posters never push the provider past its
// connection budget.
type ImageClient struct {
	source domain.ImageSource
	client *http.Client
	gate   *transport.Gate
	logger *slog.Logger
}

// NewImageClient creates a new thumbnail client
func NewImageClient(source domain.ImageSource, client *http.Client, gate *transport.Gate, logger *slog.Logger) *ImageClient {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &ImageClient{
		source: source,
		client: client,
		gate:   gate,
		logger: logger,
	}
}

// Download fetches the series thumbnail into dir. Reports whether a new
// poster was written; an already present poster is never re-fetched.
func (c *ImageClient) Download(ctx context.Context, id, dir string) (bool, error) {
	target := filepath.Join(dir, posterFile)
	if _, err := os.Stat(target); err == nil {
		return false, nil
	}

	imgURL, err := c.source.ResolveURL(ctx, id)
	if err != nil {
		return false, err
	}

	if c.gate != nil {
		if err := c.gate.Acquire(ctx); err != nil {
			return false, err
		}
		defer c.gate.Release()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("poster for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("poster for %s: unexpected status %d", id, resp.StatusCode)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(dir, posterFile+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("stage poster: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, fmt.Errorf("download poster for %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	return true, nil
}

// DownloadAll fetches missing posters for every given series, concurrently
// up to the gate's bound. Individual failures are logged and skipped.
func (c *ImageClient) DownloadAll(ctx context.Context, cacheDir string, ids []string) {
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			fetched, err := c.Download(ctx, id, filepath.Join(cacheDir, id))
			if err != nil {
				c.logger.Warn("poster download failed", "id", id, "error", err)
				return
			}
			if fetched {
				c.logger.Debug("poster downloaded", "id", id)
			}
		}(id)
	}
	wg.Wait()
}

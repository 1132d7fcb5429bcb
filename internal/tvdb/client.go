package tvdb

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cweiss/showsync/internal/domain"
	"github.com/cweiss/showsync/internal/transport"
)

// Client implements domain.SeriesFetcher against TheTVDB legacy series
// bundle endpoint. A bundle is a zip holding the per-language metadata
// documents for one series.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	gate    *transport.Gate
	logger  *slog.Logger
}

// NewClient creates a new series bundle client
func NewClient(baseURL, apiKey string, client *http.Client, gate *transport.Gate, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		gate:    gate,
		logger:  logger,
	}
}

// FetchAndUnpack downloads the language bundle for one series and unpacks
// it into dir. The bundle is always complete; a non-empty since rides along
// as a query parameter so mirrors can serve from cache. Timeouts surface as
// ErrFetchTimedOut, other transport failures as ErrProviderUnavailable.
func (c *Client) FetchAndUnpack(ctx context.Context, id, dir, since, language string) error {
	if language == "" {
		language = "en"
	}
	if c.gate != nil {
		if err := c.gate.Acquire(ctx); err != nil {
			return err
		}
		defer c.gate.Release()
	}

	reqURL := fmt.Sprintf("%s/api/%s/series/%s/all/%s.zip",
		c.baseURL, c.apiKey, url.PathEscape(id), url.PathEscape(language))
	if since != "" {
		reqURL += "?time=" + url.QueryEscape(since)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("series bundle request", "id", id, "language", language, "since", since)

	resp, err := c.client.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("series bundle for %s: %w: status %d", id, domain.ErrProviderUnavailable, resp.StatusCode)
	}

	// archive/zip needs random access, so the bundle is staged on disk
	// next to the files it will become.
	tmp, err := os.CreateTemp(dir, "bundle-*.zip")
	if err != nil {
		return fmt.Errorf("stage series bundle: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return classify(err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("stage series bundle: %w", err)
	}

	return c.unpack(tmp.Name(), dir)
}

func (c *Client) unpack(archive, dir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open series bundle: %w", err)
	}
	defer r.Close()

	for _, file := range r.File {
		if !safeArchivePath(file.Name) {
			c.logger.Warn("skipping unsafe bundle entry", "name", file.Name)
			continue
		}
		if err := extractFile(file, dir); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(file *zip.File, dir string) error {
	target := filepath.Join(dir, filepath.FromSlash(file.Name))
	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open bundle entry %s: %w", file.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("extract %s: %w", file.Name, err)
	}
	return dst.Close()
}

// safeArchivePath rejects entries that would escape the target directory.
func safeArchivePath(name string) bool {
	if strings.Contains(name, "..") {
		return false
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return false
	}
	return true
}

// classify maps a transport failure onto the domain taxonomy. Timeouts
// abort the surrounding sync pass; anything else is retried on a later one.
func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrFetchTimedOut, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", domain.ErrFetchTimedOut, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
}

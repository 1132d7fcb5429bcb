package tvdb

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cweiss/showsync/internal/domain"
	"github.com/cweiss/showsync/internal/transport"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "showsync/1.0"

	updatesPath = "/api/Updates.php"
)

// Feed implements domain.UpdateFeed against TheTVDB legacy update endpoint.
// The same endpoint serves both queries: type=none returns only the server
// clock, type=series returns the ids changed since a given token.
type Feed struct {
	baseURL string
	client  *http.Client
	gate    *transport.Gate
	logger  *slog.Logger
}

// NewFeed creates a new update feed client
func NewFeed(baseURL string, client *http.Client, gate *transport.Gate, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Feed{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		gate:    gate,
		logger:  logger,
	}
}

// ServerTime returns the provider's current time token.
func (f *Feed) ServerTime(ctx context.Context) (string, error) {
	serverTime, _, err := f.query(ctx, url.Values{"type": {"none"}})
	return serverTime, err
}

// Changes returns the ids changed since the given token, unfiltered, plus
// the provider's new token.
func (f *Feed) Changes(ctx context.Context, since string) (*domain.UpdateFeedResult, error) {
	serverTime, ids, err := f.query(ctx, url.Values{"type": {"series"}, "time": {since}})
	if err != nil {
		return nil, err
	}
	return &domain.UpdateFeedResult{ServerTime: serverTime, SeriesIDs: ids}, nil
}

func (f *Feed) query(ctx context.Context, params url.Values) (string, []string, error) {
	if f.gate != nil {
		if err := f.gate.Acquire(ctx); err != nil {
			return "", nil, err
		}
		defer f.gate.Release()
	}

	reqURL := fmt.Sprintf("%s%s?%s", f.baseURL, updatesPath, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	f.logger.Debug("update feed request", "url", reqURL)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("update feed request failed", "error", err)
		return "", nil, fmt.Errorf("update feed: %w", domain.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("update feed: unexpected status %d", resp.StatusCode)
	}

	return parseUpdates(resp.Body)
}

// parseUpdates streams a tag-oriented update document, collecting the Time
// field and any Series ids. Field order is not guaranteed: Time may come
// before, after, or between id entries, and unrecognized elements are
// skipped. A document without a Time field is malformed.
func parseUpdates(r io.Reader) (string, []string, error) {
	dec := xml.NewDecoder(r)

	var (
		serverTime string
		ids        []string
		rootSeen   bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("malformed update feed: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case start.Name.Local == "Time":
			var v string
			if err := dec.DecodeElement(&v, &start); err != nil {
				return "", nil, fmt.Errorf("malformed update feed: %w", err)
			}
			serverTime = strings.TrimSpace(v)
		case start.Name.Local == "Series":
			var v string
			if err := dec.DecodeElement(&v, &start); err != nil {
				return "", nil, fmt.Errorf("malformed update feed: %w", err)
			}
			if v = strings.TrimSpace(v); v != "" {
				ids = append(ids, v)
			}
		case !rootSeen:
			// Descend into the document element, whatever its name.
			rootSeen = true
		default:
			if err := dec.Skip(); err != nil {
				return "", nil, fmt.Errorf("malformed update feed: %w", err)
			}
		}
	}

	if serverTime == "" {
		return "", nil, errors.New("update feed missing Time field")
	}
	return serverTime, ids, nil
}

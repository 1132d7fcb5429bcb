package domain

import "context"

// SeriesIndex enumerates the catalogued series and their preferred metadata
// languages. The sync engine only ever sees the library through this.
type SeriesIndex interface {
	// ListRefs returns every catalogued (id, language) pair in a stable order.
	ListRefs() ([]SeriesRef, error)
}

// SeriesFetcher downloads and unpacks one series' metadata into its cache
// directory. since is the last known watermark, empty on a first run.
// Failures are classified through the domain sentinels: anything wrapping
// ErrFetchTimedOut aborts the surrounding pass, everything else is treated
// as recoverable for that one item.
type SeriesFetcher interface {
	FetchAndUnpack(ctx context.Context, id, dir, since, language string) error
}

// UpdateFeed exposes the provider's change feed.
type UpdateFeed interface {
	// ServerTime returns the provider's current time token. Consulted only
	// when no watermark exists yet.
	ServerTime(ctx context.Context) (string, error)

	// Changes returns the ids changed since the given watermark together
	// with the provider's new time token.
	Changes(ctx context.Context, since string) (*UpdateFeedResult, error)
}

// ImageSource resolves the thumbnail URL for a series. Implementations may
// query an external service or expand a configured URL template.
type ImageSource interface {
	ResolveURL(ctx context.Context, id string) (string, error)
}

// SeriesCatalog is the persistence contract for the followed-series
// catalogue. Lookups match ids case-insensitively.
type SeriesCatalog interface {
	Put(ref SeriesRef) error
	Get(id string) (SeriesRef, bool)
	// Delete returns ErrSeriesNotFound when no entry matches.
	Delete(id string) error
	List() ([]SeriesRef, error)
}

package domain

import "strings"

// SeriesRef identifies a catalogued series and the metadata language it should
// be fetched in. The same external id may be catalogued more than once with
// different languages when a series is referenced from several places.
type SeriesRef struct {
	TVDBID   string `json:"tvdb_id"`  // provider identifier, also the cache directory name
	Language string `json:"language"` // metadata language code, e.g. "en"
	Title    string `json:"title"`    // display title, used for listing and search
	AddedAt  int64  `json:"added_at"` // unix timestamp when catalogued
}

// UpdateFeedResult carries one fetch of the provider's update feed: the
// server's current time token and the ids changed since the requested
// watermark, in feed order. Transient, never persisted.
type UpdateFeedResult struct {
	ServerTime string
	SeriesIDs  []string
}

// CanonicalID normalizes an external id for comparison. Ids are matched
// case-insensitively everywhere; the original spelling is kept for display
// and directory names.
func CanonicalID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

package domain

import "errors"

// Sentinel errors for provider and library operations
var (
	// ErrProviderUnavailable indicates a recoverable provider failure for a
	// single fetch (HTTP error status, connection refused, bad payload)
	ErrProviderUnavailable = errors.New("metadata provider unavailable")

	// ErrFetchTimedOut indicates a fetch exceeded its deadline
	ErrFetchTimedOut = errors.New("metadata fetch timed out")

	// ErrSeriesNotFound indicates the requested series is not catalogued
	ErrSeriesNotFound = errors.New("series not found in library")
)

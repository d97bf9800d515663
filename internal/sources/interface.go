package sources

import (
	"context"

	"adwareguard/internal/domain/models"
)

// Connector defines the interface for adware description list sources
type Connector interface {
	// Slug returns the unique identifier for this source
	Slug() string

	// Name returns the human-readable name of this source
	Name() string

	// URL returns the remote location of the list
	URL() string

	// Fetch retrieves the source's path patterns. Unreachability of the
	// source is never an error: the connector falls back to its cached
	// copy, and failing that reports FetchStatusSkipped in the result.
	// A returned error is fatal to the whole run (cache not writable).
	Fetch(ctx context.Context) (*models.SourceFetchResult, *models.PathSet, error)
}

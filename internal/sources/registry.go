package sources

import (
	"context"
	"fmt"

	"adwareguard/internal/domain/models"
	"adwareguard/pkg/logger"
)

// Registry manages the ordered collection of source connectors
type Registry struct {
	connectors []Connector
	slugs      map[string]struct{}
	logger     *logger.Logger
}

// NewRegistry creates a new connector registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		slugs:  make(map[string]struct{}),
		logger: log.WithComponent("source-registry"),
	}
}

// Register registers a connector; sources are fetched in registration order
func (r *Registry) Register(connector Connector) error {
	slug := connector.Slug()
	if _, exists := r.slugs[slug]; exists {
		return fmt.Errorf("connector already registered: %s", slug)
	}

	r.slugs[slug] = struct{}{}
	r.connectors = append(r.connectors, connector)
	r.logger.Info().
		Str("slug", slug).
		Str("url", connector.URL()).
		Msg("registered source")

	return nil
}

// FetchAll fetches every source in order and accumulates all parsed patterns
// into one set, duplicates collapsed. Per-source unreachability is absorbed
// into the results; only a fatal cache failure aborts, and then immediately,
// without attempting the remaining sources.
func (r *Registry) FetchAll(ctx context.Context) (*models.PathSet, []models.SourceFetchResult, error) {
	patterns := models.NewPathSet()
	results := make([]models.SourceFetchResult, 0, len(r.connectors))

	for _, connector := range r.connectors {
		result, sourcePatterns, err := connector.Fetch(ctx)
		if result != nil {
			results = append(results, *result)
		}
		if err != nil {
			return nil, results, fmt.Errorf("source %s: %w", connector.Slug(), err)
		}
		patterns.AddAll(sourcePatterns)
	}

	return patterns, results, nil
}

package services

import (
	"github.com/spf13/afero"

	"adwareguard/internal/domain/models"
	"adwareguard/pkg/logger"
)

// Matcher expands path patterns against the live filesystem
type Matcher struct {
	fs     afero.Fs
	logger *logger.Logger
}

// NewMatcher creates a Matcher over the given filesystem
func NewMatcher(fsys afero.Fs, log *logger.Logger) *Matcher {
	return &Matcher{
		fs:     fsys,
		logger: log.WithComponent("matcher"),
	}
}

// Expand evaluates every pattern as a filesystem glob (`*`, `?`, character
// classes) and unions the results. A pattern with no metacharacters matches
// only itself, and only if it exists; a pattern matching nothing contributes
// nothing. The union collapses a path matched by several patterns to one
// entry, so Expand(P1 ∪ P2) == Expand(P1) ∪ Expand(P2).
func (m *Matcher) Expand(patterns *models.PathSet) *models.PathSet {
	matched := models.NewPathSet()
	if patterns == nil {
		return matched
	}

	for _, pattern := range patterns.Sorted() {
		hits, err := afero.Glob(m.fs, pattern)
		if err != nil {
			// filepath.Match syntax error in a downloaded pattern
			m.logger.Warn().Err(err).Str("pattern", pattern).Msg("bad glob pattern, skipping")
			continue
		}
		for _, hit := range hits {
			matched.Add(hit)
		}
	}

	m.logger.Debug().
		Int("patterns", patterns.Len()).
		Int("matched", matched.Len()).
		Msg("expanded patterns against filesystem")

	return matched
}

package sources

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"adwareguard/internal/domain/models"
	"adwareguard/internal/infrastructure/cache"
	"adwareguard/pkg/logger"
)

// FeedConnector fetches a newline-delimited list of path patterns over
// HTTP(S). Successful fetches are written through to the list cache; on
// network failure the cached copy is used instead.
type FeedConnector struct {
	client *http.Client
	cache  *cache.FileCache
	logger *logger.Logger
	url    string
	slug   string
}

// NewFeedConnector creates a connector for the given list URL
func NewFeedConnector(rawURL string, fileCache *cache.FileCache, log *logger.Logger, timeout time.Duration) *FeedConnector {
	slug := strings.ToLower(cache.Key(rawURL))
	return &FeedConnector{
		client: &http.Client{
			Timeout: timeout,
		},
		cache:  fileCache,
		logger: log.WithComponent("feed").WithSourceID(slug),
		url:    rawURL,
		slug:   slug,
	}
}

// Slug returns the unique identifier for this source
func (c *FeedConnector) Slug() string {
	return c.slug
}

// Name returns the human-readable name of this source
func (c *FeedConnector) Name() string {
	return cache.Key(c.url)
}

// URL returns the remote location of the list
func (c *FeedConnector) URL() string {
	return c.url
}

// Fetch retrieves the pattern list, preferring the network and falling back
// to the cached copy. Only a cache write failure is returned as an error.
func (c *FeedConnector) Fetch(ctx context.Context) (*models.SourceFetchResult, *models.PathSet, error) {
	start := time.Now()
	result := &models.SourceFetchResult{
		SourceSlug: c.slug,
		SourceURL:  c.url,
		FetchedAt:  start,
	}

	c.logger.Info().Str("url", c.url).Msg("attempting to update adware list")

	body, fetchErr := c.download(ctx)
	if fetchErr != nil {
		c.logger.Warn().Err(fetchErr).Msg("update failed, looking for cached copy")

		cached, cacheErr := c.cache.Load(c.url)
		if cacheErr != nil {
			c.logger.Error().Err(cacheErr).Str("url", c.url).Msg("no cached copy, skipping source")
			result.Status = models.FetchStatusSkipped
			result.Error = fetchErr
			result.Duration = time.Since(start)
			return result, models.NewPathSet(), nil
		}

		patterns := parsePatterns(bytes.NewReader(cached))
		result.Status = models.FetchStatusCache
		result.Patterns = patterns.Len()
		result.Duration = time.Since(start)
		c.logger.Info().Int("patterns", patterns.Len()).Msg("using cached adware list")
		return result, patterns, nil
	}

	// Update the cached copy. A failure here is fatal to the whole run:
	// continuing without a writable cache would silently hide the absence
	// of up-to-date threat data on the next offline invocation.
	if err := c.cache.Store(c.url, body); err != nil {
		result.Status = models.FetchStatusSkipped
		result.Error = err
		result.Duration = time.Since(start)
		return result, nil, err
	}

	patterns := parsePatterns(bytes.NewReader(body))
	result.Status = models.FetchStatusFetched
	result.Patterns = patterns.Len()
	result.Duration = time.Since(start)

	c.logger.Info().
		Int("patterns", patterns.Len()).
		Dur("duration", result.Duration).
		Msg("adware list updated")

	return result, patterns, nil
}

// download performs the HTTP GET and returns the raw response body
func (c *FeedConnector) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", c.url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// parsePatterns reads one path pattern per line, discarding blank lines and
// comments.
func parsePatterns(reader io.Reader) *models.PathSet {
	patterns := models.NewPathSet()
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns.Add(line)
	}
	return patterns
}

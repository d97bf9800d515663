package sources

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"

	"adwareguard/internal/domain/models"
	"adwareguard/internal/infrastructure/cache"
	"adwareguard/pkg/logger"
)

func newTestCache(t *testing.T) *cache.FileCache {
	t.Helper()
	c, err := cache.New(afero.NewMemMapFs(), "/cache", logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFeedConnectorFetch(t *testing.T) {
	body := "/Library/Adware*\n\n# curated by somebody\n/private/tmp/evil\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	fileCache := newTestCache(t)
	url := server.URL + "/lists/AppleAdwareList"
	conn := NewFeedConnector(url, fileCache, logger.NewNop(), 5*time.Second)

	result, patterns, err := conn.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Status != models.FetchStatusFetched {
		t.Errorf("status = %q, want %q", result.Status, models.FetchStatusFetched)
	}
	if patterns.Len() != 2 {
		t.Fatalf("patterns = %v, want 2 entries", patterns.Sorted())
	}
	for _, want := range []string{"/Library/Adware*", "/private/tmp/evil"} {
		if !patterns.Contains(want) {
			t.Errorf("patterns missing %q", want)
		}
	}

	// The raw body must have been written through to the cache verbatim.
	cached, err := fileCache.Load(url)
	if err != nil {
		t.Fatalf("cache.Load() error = %v", err)
	}
	if string(cached) != body {
		t.Errorf("cached copy = %q, want %q", cached, body)
	}
}

func TestFeedConnectorFallsBackToCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusInternalServerError)
	}))
	defer server.Close()

	fileCache := newTestCache(t)
	url := server.URL + "/AppleAdwareList"
	if err := fileCache.Store(url, []byte("/Library/CachedAdware\n")); err != nil {
		t.Fatal(err)
	}

	conn := NewFeedConnector(url, fileCache, logger.NewNop(), 5*time.Second)
	result, patterns, err := conn.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Status != models.FetchStatusCache {
		t.Errorf("status = %q, want %q", result.Status, models.FetchStatusCache)
	}
	if !patterns.Contains("/Library/CachedAdware") || patterns.Len() != 1 {
		t.Errorf("patterns = %v, want exactly the cached entry", patterns.Sorted())
	}
}

func TestFeedConnectorSkipsWhenNetworkAndCacheFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	conn := NewFeedConnector(server.URL+"/AppleAdwareList", newTestCache(t), logger.NewNop(), 5*time.Second)
	result, patterns, err := conn.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v, single-source unreachability must not raise", err)
	}
	if result.Status != models.FetchStatusSkipped {
		t.Errorf("status = %q, want %q", result.Status, models.FetchStatusSkipped)
	}
	if result.Error == nil {
		t.Error("result.Error should record the fetch failure")
	}
	if patterns.Len() != 0 {
		t.Errorf("patterns = %v, want empty set", patterns.Sorted())
	}
}

func TestFeedConnectorCacheWriteFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("/tmp/evil\n"))
	}))
	defer server.Close()

	// Cache root exists but the filesystem rejects writes, as when the tool
	// runs unprivileged against the system cache directory.
	base := afero.NewMemMapFs()
	if err := base.MkdirAll("/cache", 0o755); err != nil {
		t.Fatal(err)
	}
	fileCache, err := cache.New(afero.NewReadOnlyFs(base), "/cache", logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	conn := NewFeedConnector(server.URL+"/AppleAdwareList", fileCache, logger.NewNop(), 5*time.Second)
	_, _, err = conn.Fetch(context.Background())
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("Fetch() error = %v, want fs.ErrPermission", err)
	}
}

package services

import (
	"testing"
	"time"

	"github.com/spf13/afero"

	"adwareguard/internal/domain/models"
	"adwareguard/internal/infrastructure/cache"
	"adwareguard/pkg/logger"
)

func newRemediator(t *testing.T) (*Remediator, afero.Fs, *cache.FileCache) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	fileCache, err := cache.New(fsys, "/cache", logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return NewRemediator(fsys, fileCache, logger.NewNop()), fsys, fileCache
}

func statuses(results []models.ActionResult) map[string]models.ActionStatus {
	out := make(map[string]models.ActionStatus, len(results))
	for _, r := range results {
		out[r.Path] = r.Status
	}
	return out
}

func TestRemoveFilesAndDirectories(t *testing.T) {
	r, fsys, _ := newRemediator(t)
	afero.WriteFile(fsys, "/evil/nested/payload", []byte("x"), 0o644)
	afero.WriteFile(fsys, "/evil/nested/deeper/more", []byte("x"), 0o644)
	afero.WriteFile(fsys, "/plain-file", []byte("x"), 0o644)

	results := r.Remove([]string{"/evil/nested", "/plain-file"})

	got := statuses(results)
	if got["/evil/nested"] != models.ActionStatusRemoved {
		t.Errorf("directory status = %q, want removed", got["/evil/nested"])
	}
	if got["/plain-file"] != models.ActionStatusRemoved {
		t.Errorf("file status = %q, want removed", got["/plain-file"])
	}
	if ok, _ := afero.DirExists(fsys, "/evil/nested"); ok {
		t.Error("directory still exists after recursive remove")
	}
	if ok, _ := afero.Exists(fsys, "/plain-file"); ok {
		t.Error("file still exists after remove")
	}
}

func TestRemoveMissingPathFailsWithoutAborting(t *testing.T) {
	r, fsys, _ := newRemediator(t)
	afero.WriteFile(fsys, "/still-here", []byte("x"), 0o644)

	results := r.Remove([]string{"/never-existed", "/still-here"})

	got := statuses(results)
	if got["/never-existed"] != models.ActionStatusRemoveFailed {
		t.Errorf("missing path status = %q, want remove-failed", got["/never-existed"])
	}
	// The failure must not abort the batch.
	if got["/still-here"] != models.ActionStatusRemoved {
		t.Errorf("later path status = %q, want removed", got["/still-here"])
	}
}

func TestQuarantineEmptySet(t *testing.T) {
	r, fsys, _ := newRemediator(t)

	dir, results := r.Quarantine(nil, time.Now())
	if dir != "" {
		t.Errorf("dir = %q, want no batch directory for empty set", dir)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}

	// No stray timestamped directory under the cache root.
	entries, err := afero.ReadDir(fsys, "/cache")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache root has %d entries, want 0", len(entries))
	}
}

func TestQuarantineMovesIntoOneBatch(t *testing.T) {
	r, fsys, _ := newRemediator(t)
	afero.WriteFile(fsys, "/infected/one", []byte("a"), 0o644)
	afero.WriteFile(fsys, "/elsewhere/two", []byte("b"), 0o644)

	at := time.Date(2015, 3, 9, 14, 5, 6, 0, time.Local)
	dir, results := r.Quarantine([]string{"/infected/one", "/elsewhere/two"}, at)

	if dir != "/cache/20150309-140506" {
		t.Errorf("dir = %q, want /cache/20150309-140506", dir)
	}

	got := statuses(results)
	for _, p := range []string{"/infected/one", "/elsewhere/two"} {
		if got[p] != models.ActionStatusQuarantined {
			t.Errorf("%s status = %q, want quarantined", p, got[p])
		}
		if ok, _ := afero.Exists(fsys, p); ok {
			t.Errorf("%s still at original location", p)
		}
	}

	// Basenames preserved under the single batch directory.
	for _, base := range []string{"one", "two"} {
		if ok, _ := afero.Exists(fsys, dir+"/"+base); !ok {
			t.Errorf("%s missing from batch directory", base)
		}
	}
}

func TestQuarantineCollidingBasenames(t *testing.T) {
	r, fsys, _ := newRemediator(t)
	afero.WriteFile(fsys, "/a/evil.plist", []byte("first"), 0o644)
	afero.WriteFile(fsys, "/b/evil.plist", []byte("second"), 0o644)

	dir, results := r.Quarantine([]string{"/a/evil.plist", "/b/evil.plist"}, time.Now())

	got := statuses(results)
	for _, p := range []string{"/a/evil.plist", "/b/evil.plist"} {
		if got[p] != models.ActionStatusQuarantined {
			t.Errorf("%s status = %q, want quarantined", p, got[p])
		}
		if ok, _ := afero.Exists(fsys, p); ok {
			t.Errorf("%s still at original location", p)
		}
	}

	// Both payloads survive: the second entry must not overwrite the first.
	first, err := afero.ReadFile(fsys, dir+"/evil.plist")
	if err != nil {
		t.Fatalf("reading evil.plist: %v", err)
	}
	second, err := afero.ReadFile(fsys, dir+"/evil.plist-1")
	if err != nil {
		t.Fatalf("reading evil.plist-1: %v", err)
	}
	if string(first) != "first" || string(second) != "second" {
		t.Errorf("batch contents = %q, %q; want first, second", first, second)
	}
}

func TestQuarantineContinuesPastFailures(t *testing.T) {
	r, fsys, _ := newRemediator(t)
	afero.WriteFile(fsys, "/infected/real", []byte("a"), 0o644)

	dir, results := r.Quarantine([]string{"/infected/ghost", "/infected/real"}, time.Now())
	if dir == "" {
		t.Fatal("expected a batch directory")
	}

	got := statuses(results)
	if got["/infected/ghost"] != models.ActionStatusQuarantineFailed {
		t.Errorf("ghost status = %q, want quarantine-failed", got["/infected/ghost"])
	}
	if got["/infected/real"] != models.ActionStatusQuarantined {
		t.Errorf("real status = %q, want quarantined", got["/infected/real"])
	}
	if ok, _ := afero.Exists(fsys, dir+"/real"); !ok {
		t.Error("real file missing from batch directory")
	}
}

package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"adwareguard/pkg/logger"
)

// ErrNotFound is returned by Load when no cached copy exists for a source
var ErrNotFound = errors.New("no cached copy")

// quarantineTimeFormat names quarantine batch directories with second-level
// resolution. Two runs starting within the same second collide; accepted
// limitation, the scheduler is expected to avoid overlapping invocations.
const quarantineTimeFormat = "20060102-150405"

// FileCache persists fetched adware description lists on disk, one file per
// source under a fixed root. The same root holds quarantine batch
// directories.
type FileCache struct {
	fs     afero.Fs
	root   string
	logger *logger.Logger
}

// New creates a FileCache rooted at root, creating the directory if absent.
// A permission failure here carries the same weight as one during Store:
// the caller must treat it as fatal.
func New(fsys afero.Fs, root string, log *logger.Logger) (*FileCache, error) {
	if exists, _ := afero.DirExists(fsys, root); !exists {
		if err := fsys.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache root %s: %w", root, err)
		}
	}
	return &FileCache{
		fs:     fsys,
		root:   root,
		logger: log.WithComponent("list-cache"),
	}, nil
}

// Root returns the cache root directory
func (c *FileCache) Root() string {
	return c.root
}

// Key derives the cache entry name for a source identifier: the trailing
// path segment of its URL.
func Key(source string) string {
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(source)
}

// EntryPath returns the on-disk location of a source's cache entry
func (c *FileCache) EntryPath(source string) string {
	return filepath.Join(c.root, Key(source))
}

// Store writes content verbatim to the source's cache entry, overwriting any
// prior entry. A write failure is surfaced to the caller; for permission
// errors (errors.Is(err, fs.ErrPermission)) that means aborting the run,
// since silently losing the cache would hide stale threat data.
func (c *FileCache) Store(source string, content []byte) error {
	entry := c.EntryPath(source)
	if err := afero.WriteFile(c.fs, entry, content, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", entry, err)
	}
	c.logger.Debug().Str("source", source).Str("entry", entry).Int("bytes", len(content)).Msg("cached source list")
	return nil
}

// Load returns the last stored content for a source, or ErrNotFound if no
// entry exists.
func (c *FileCache) Load(source string) ([]byte, error) {
	entry := c.EntryPath(source)
	data, err := afero.ReadFile(c.fs, entry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", entry, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read cache entry %s: %w", entry, err)
	}
	return data, nil
}

// NewQuarantineDir creates a quarantine batch directory under the cache root
// named from the given local time, and returns its path.
func (c *FileCache) NewQuarantineDir(t time.Time) (string, error) {
	dir := filepath.Join(c.root, t.Format(quarantineTimeFormat))
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create quarantine dir %s: %w", dir, err)
	}
	c.logger.Info().Str("dir", dir).Msg("created quarantine batch directory")
	return dir, nil
}

package services

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"adwareguard/internal/domain/models"
	"adwareguard/internal/infrastructure/cache"
	"adwareguard/pkg/logger"
)

// Remediator applies remove or quarantine actions to matched paths. Every
// action is per-path best-effort: one failure never aborts the batch.
type Remediator struct {
	fs     afero.Fs
	cache  *cache.FileCache
	logger *logger.Logger
}

// NewRemediator creates a Remediator; quarantine batches are created under
// the cache root.
func NewRemediator(fsys afero.Fs, fileCache *cache.FileCache, log *logger.Logger) *Remediator {
	return &Remediator{
		fs:     fsys,
		cache:  fileCache,
		logger: log.WithComponent("remediator"),
	}
}

// Remove permanently deletes each path: directories recursively, files
// unlinked. Failures, including a path that is already gone, yield a
// remove-failed outcome and the loop continues.
func (r *Remediator) Remove(paths []string) []models.ActionResult {
	results := make([]models.ActionResult, 0, len(paths))

	for _, p := range paths {
		if err := r.removeOne(p); err != nil {
			r.logger.Error().Err(err).Str("path", p).Msg("failed to remove adware file")
			results = append(results, models.ActionResult{Path: p, Status: models.ActionStatusRemoveFailed, Error: err})
			continue
		}
		r.logger.Info().Str("path", p).Msg("removed adware file")
		results = append(results, models.ActionResult{Path: p, Status: models.ActionStatusRemoved})
	}

	return results
}

func (r *Remediator) removeOne(p string) error {
	info, err := r.fs.Stat(p)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return r.fs.RemoveAll(p)
	}
	return r.fs.Remove(p)
}

// Quarantine relocates each path into a single timestamped batch directory
// under the cache root, preserving base names. When two entries share a base
// name the later one gets a numeric suffix so it cannot overwrite the first.
// An empty input creates no directory and takes no action. If the batch
// directory cannot be created, every entry is reported quarantine-failed.
func (r *Remediator) Quarantine(paths []string, now time.Time) (string, []models.ActionResult) {
	if len(paths) == 0 {
		return "", nil
	}

	batchDir, err := r.cache.NewQuarantineDir(now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create quarantine batch directory")
		results := make([]models.ActionResult, 0, len(paths))
		for _, p := range paths {
			results = append(results, models.ActionResult{Path: p, Status: models.ActionStatusQuarantineFailed, Error: err})
		}
		return "", results
	}

	results := make([]models.ActionResult, 0, len(paths))
	for _, p := range paths {
		dest := r.quarantineDest(batchDir, filepath.Base(p))
		if err := r.fs.Rename(p, dest); err != nil {
			r.logger.Error().Err(err).Str("path", p).Msg("failed to quarantine adware file")
			results = append(results, models.ActionResult{Path: p, Status: models.ActionStatusQuarantineFailed, Error: err})
			continue
		}
		r.logger.Info().Str("path", p).Str("dest", dest).Msg("quarantined adware file")
		results = append(results, models.ActionResult{Path: p, Status: models.ActionStatusQuarantined})
	}

	return batchDir, results
}

// quarantineDest picks a destination for base inside the batch directory,
// appending a numeric suffix if an earlier entry already claimed the name.
func (r *Remediator) quarantineDest(batchDir, base string) string {
	dest := filepath.Join(batchDir, base)
	for n := 1; ; n++ {
		exists, _ := afero.Exists(r.fs, dest)
		if !exists {
			return dest
		}
		dest = filepath.Join(batchDir, fmt.Sprintf("%s-%d", base, n))
	}
}

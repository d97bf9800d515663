package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"adwareguard/internal/detection/agent"
	"adwareguard/internal/domain/models"
	"adwareguard/internal/sources"
	"adwareguard/pkg/logger"
)

// Scanner coordinates one full invocation: fetch lists, run the heuristic
// detector, expand everything against the filesystem, then act on the
// matches according to the selected mode. Stateless across invocations
// except for the on-disk cache and quarantine directories.
type Scanner struct {
	fs         afero.Fs
	registry   *sources.Registry
	detector   *agent.Detector
	matcher    *Matcher
	remediator *Remediator
	logger     *logger.Logger
	now        func() time.Time
}

// NewScanner wires a Scanner from its collaborators
func NewScanner(fsys afero.Fs, registry *sources.Registry, detector *agent.Detector, matcher *Matcher, remediator *Remediator, log *logger.Logger) *Scanner {
	return &Scanner{
		fs:         fsys,
		registry:   registry,
		detector:   detector,
		matcher:    matcher,
		remediator: remediator,
		logger:     log.WithComponent("scanner"),
		now:        time.Now,
	}
}

// Run executes one scan in the given mode. The returned error is fatal only:
// a cache permission failure during fetch. All recoverable failures are
// absorbed into the report's per-source and per-path outcomes.
func (s *Scanner) Run(ctx context.Context, mode models.ScanMode) (*models.ScanReport, error) {
	report := &models.ScanReport{
		ID:        uuid.New(),
		Mode:      mode,
		StartedAt: s.now(),
	}
	log := s.logger.WithRunID(report.ID.String())

	log.Info().Str("mode", string(mode)).Msg("starting adware scan")

	patterns, fetchResults, err := s.registry.FetchAll(ctx)
	report.FetchResults = fetchResults
	if err != nil {
		return report, err
	}

	detected, err := s.detector.Detect(ctx)
	if err != nil {
		return report, err
	}
	patterns.AddAll(detected)
	report.PatternCount = patterns.Len()

	matched := s.matcher.Expand(patterns)
	report.Matched = matched.Sorted()

	log.Info().
		Int("patterns", report.PatternCount).
		Int("matched", len(report.Matched)).
		Msg("pattern expansion complete")

	// Matches that are live launchd jobs will respawn their payload until
	// unloaded; call them out so the operator knows removal alone may not
	// be the end of it.
	for _, job := range agent.LaunchdConfigs(s.fs, report.Matched) {
		log.Warn().Str("job", job).Msg("match is a launchd configuration file")
	}

	switch mode {
	case models.ModeRemove:
		report.Actions = s.remediator.Remove(report.Matched)
	case models.ModeQuarantine:
		report.QuarantineDir, report.Actions = s.remediator.Quarantine(report.Matched, s.now())
	case models.ModeReport:
		report.Output = FormatPlain(report.Matched)
		report.Actions = reportedResults(report.Matched)
	default:
		report.Output = FormatExtensionAttribute(report.Matched)
		report.Actions = reportedResults(report.Matched)
	}

	report.CompletedAt = s.now()

	failed := 0
	for _, a := range report.Actions {
		if a.Status.Failed() {
			failed++
		}
	}
	log.Info().
		Int("matched", len(report.Matched)).
		Int("failed", failed).
		Dur("duration", report.CompletedAt.Sub(report.StartedAt)).
		Msg("scan complete")

	return report, nil
}

func reportedResults(paths []string) []models.ActionResult {
	results := make([]models.ActionResult, 0, len(paths))
	for _, p := range paths {
		results = append(results, models.ActionResult{Path: p, Status: models.ActionStatusReported})
	}
	return results
}

// Package agent detects a polymorphic adware family that installs a
// LaunchAgent or LaunchDaemon under a randomized reverse-DNS name and
// launches a binary at a fixed relative path inside Application Support.
// Static path lists miss it because the install name differs per infection;
// the launchd job's program path does not.
package agent

import (
	"context"
	"path"
	"regexp"

	"github.com/spf13/afero"
	"howett.net/plist"

	"adwareguard/internal/domain/models"
	"adwareguard/pkg/logger"
)

// launchdJobGlobs are the config file shapes this family hides behind.
// Legitimate vendors use the same naming, so a glob hit alone is not a
// detection; the job content decides.
var launchdJobGlobs = []string{
	"/Library/LaunchAgents/com.*.agent.plist",
	"/Library/LaunchDaemons/com.*.helper.plist",
	"/Library/LaunchDaemons/com.*.daemon.plist",
}

const supportDir = "/Library/Application Support"

// agentBinaryRe matches the family's fixed program path, capturing the
// randomized install name.
var agentBinaryRe = regexp.MustCompile(`/Library/Application Support/(.*)/Agent/agent\.app/Contents/MacOS/agent`)

// Detector scans launchd configuration locations for the disguised agent
type Detector struct {
	fs     afero.Fs
	logger *logger.Logger
}

// New creates a Detector over the given filesystem
func New(fsys afero.Fs, log *logger.Logger) *Detector {
	return &Detector{
		fs:     fsys,
		logger: log.WithComponent("agent-detector"),
	}
}

// Detect returns the paths implicated by any matching launchd job: the job
// file itself plus the Application Support directory its program path names.
// Unreadable or non-matching candidates contribute nothing and never abort
// the scan.
func (d *Detector) Detect(ctx context.Context) (*models.PathSet, error) {
	result := models.NewPathSet()

	for _, pattern := range launchdJobGlobs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		candidates, err := afero.Glob(d.fs, pattern)
		if err != nil {
			// Only malformed patterns error here; ours are fixed.
			d.logger.Warn().Err(err).Str("pattern", pattern).Msg("glob failed")
			continue
		}

		for _, candidate := range candidates {
			content, err := afero.ReadFile(d.fs, candidate)
			if err != nil {
				d.logger.Debug().Err(err).Str("file", candidate).Msg("candidate unreadable, treating as no match")
				continue
			}

			m := agentBinaryRe.FindSubmatch(content)
			if m == nil {
				continue
			}

			installName := string(m[1])
			result.Add(candidate)
			result.Add(path.Join(supportDir, installName))

			d.logger.Error().
				Str("job", candidate).
				Str("install_name", installName).
				Str("label", jobLabel(content)).
				Msg("disguised agent launchd job detected")
		}
	}

	return result, nil
}

// jobLabel extracts the launchd job's Label for log context. The match has
// already been made on the raw text; a malformed plist just yields an empty
// label.
func jobLabel(content []byte) string {
	var job struct {
		Label string `plist:"Label"`
	}
	if _, err := plist.Unmarshal(content, &job); err != nil {
		return ""
	}
	return job.Label
}

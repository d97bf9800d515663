package models

import (
	"time"

	"github.com/google/uuid"
)

// FetchStatus represents how a source's pattern list was obtained
type FetchStatus string

const (
	// FetchStatusFetched means the list came fresh from the network
	FetchStatusFetched FetchStatus = "fetched"
	// FetchStatusCache means the network failed and the cached copy was used
	FetchStatusCache FetchStatus = "cache"
	// FetchStatusSkipped means both network and cache failed; the source
	// contributed nothing
	FetchStatusSkipped FetchStatus = "skipped"
)

// SourceFetchResult represents the result of fetching from a single source
type SourceFetchResult struct {
	SourceSlug string        `json:"source_slug"`
	SourceURL  string        `json:"source_url"`
	Status     FetchStatus   `json:"status"`
	FetchedAt  time.Time     `json:"fetched_at"`
	Duration   time.Duration `json:"duration"`
	Patterns   int           `json:"patterns"`
	Error      error         `json:"-"`
}

// ActionStatus represents the outcome of a remediation action on one path
type ActionStatus string

const (
	ActionStatusReported         ActionStatus = "reported"
	ActionStatusRemoved          ActionStatus = "removed"
	ActionStatusRemoveFailed     ActionStatus = "remove-failed"
	ActionStatusQuarantined      ActionStatus = "quarantined"
	ActionStatusQuarantineFailed ActionStatus = "quarantine-failed"
)

// Failed reports whether the status is a failure outcome
func (s ActionStatus) Failed() bool {
	return s == ActionStatusRemoveFailed || s == ActionStatusQuarantineFailed
}

// ActionResult is the per-path outcome of a remediation run
type ActionResult struct {
	Path   string       `json:"path"`
	Status ActionStatus `json:"status"`
	Error  error        `json:"-"`
}

// ScanMode selects what is done with the matched set
type ScanMode string

const (
	// ModeExtensionAttribute prints the structured report consumed by the
	// device management tool; the default when no mode flag is given
	ModeExtensionAttribute ScanMode = "extension-attribute"
	// ModeReport prints the plain stdout report
	ModeReport ScanMode = "report"
	// ModeRemove permanently deletes matched files and directories
	ModeRemove ScanMode = "remove"
	// ModeQuarantine relocates matches into a timestamped batch directory
	ModeQuarantine ScanMode = "quarantine"
)

// ScanReport aggregates everything a single invocation produced
type ScanReport struct {
	ID          uuid.UUID `json:"id"`
	Mode        ScanMode  `json:"mode"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	FetchResults []SourceFetchResult `json:"fetch_results"`
	PatternCount int                 `json:"pattern_count"`

	// Matched holds the concrete paths found on disk, sorted
	Matched []string `json:"matched"`

	// Actions holds per-path remediation outcomes (empty in report modes)
	Actions []ActionResult `json:"actions,omitempty"`

	// QuarantineDir is set when a quarantine batch directory was created
	QuarantineDir string `json:"quarantine_dir,omitempty"`

	// Output is the formatted report body in report modes
	Output string `json:"-"`
}

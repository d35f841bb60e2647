package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a segmentation job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return normalized, true
	default:
		return "", false
	}
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks one end-to-end segmentation request from submission to its
// terminal state.
//
// ArtifactPath is set if and only if Status is completed; ErrorDetail is set
// if and only if Status is failed. The workspace directory and everything
// under it belong exclusively to this job.
type Job struct {
	ID            string
	Status        Status
	SourceName    string
	Prompt        string
	WorkspacePath string
	SourcePath    string
	ArtifactPath  string
	ErrorDetail   string
	SubmittedAt   time.Time
	CompletedAt   time.Time

	// Segmentation diagnostics: frames extracted vs frames that survived
	// best-effort per-frame processing. Zero values until the stage runs.
	FramesTotal int
	FramesKept  int
}

// IsProcessing reports whether the job is still in flight.
func (j Job) IsProcessing() bool {
	return j.Status == StatusProcessing
}

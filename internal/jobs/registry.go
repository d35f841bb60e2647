package jobs

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrDuplicateJob is returned when creating a record whose id already exists.
	ErrDuplicateJob = errors.New("duplicate job")
	// ErrNotFound is returned when a job id is unknown to the registry.
	ErrNotFound = errors.New("job not found")
	// ErrInvalidTransition is returned when a terminal mutation targets a job
	// that is no longer processing.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Registry is the process-wide source of truth for job state. It is volatile
// by design: jobs are lost on restart, which callers must treat as an accepted
// operational limitation rather than a defect.
//
// All mutations happen under the registry lock and Get returns a copy, so a
// reader can never observe a record with a terminal status but missing
// terminal fields.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Job
}

// NewRegistry constructs an empty registry. One instance is created at process
// start and shared via dependency injection; there is no ambient global.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*Job)}
}

// Create inserts a new record. The job's status is forced to processing and
// its submission time is stamped if unset.
func (r *Registry) Create(job Job) error {
	if job.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidTransition)
	}
	job.Status = StatusProcessing
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[job.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.ID)
	}
	stored := job
	r.records[job.ID] = &stored
	return nil
}

// Get returns a copy of the job record.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *record, nil
}

// List returns copies of all records, newest submissions first.
func (r *Registry) List() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Job, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// Len reports the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// MarkCompleted transitions a processing job to completed, recording the
// artifact path and completion time atomically.
func (r *Registry) MarkCompleted(id, artifactPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if record.Status != StatusProcessing {
		return fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, id, record.Status)
	}
	record.Status = StatusCompleted
	record.ArtifactPath = artifactPath
	record.ErrorDetail = ""
	record.CompletedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions a processing job to failed with the supplied detail.
func (r *Registry) MarkFailed(id, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if record.Status != StatusProcessing {
		return fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, id, record.Status)
	}
	if detail == "" {
		detail = "pipeline failed"
	}
	record.Status = StatusFailed
	record.ErrorDetail = detail
	record.ArtifactPath = ""
	record.CompletedAt = time.Now().UTC()
	return nil
}

// SetFrameCounts records segmentation diagnostics on a processing job. Counts
// on terminal jobs are left untouched.
func (r *Registry) SetFrameCounts(id string, total, kept int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if record.Status != StatusProcessing {
		return nil
	}
	record.FramesTotal = total
	record.FramesKept = kept
	return nil
}

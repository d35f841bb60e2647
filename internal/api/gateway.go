package api

import (
	"errors"
	"fmt"
	"time"

	"framemark/internal/jobs"
	"framemark/internal/services"
)

// StatusPayload is the externally visible view of one job.
type StatusPayload struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	VideoURL    string `json:"video_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
	SourceName  string `json:"source_name,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	FramesTotal int    `json:"frames_total,omitempty"`
	FramesKept  int    `json:"frames_kept,omitempty"`
	SubmittedAt string `json:"submitted_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// Artifact describes a downloadable result on disk.
type Artifact struct {
	Path         string
	DownloadName string
}

// Gateway translates job registry records into API payloads. It owns the
// read-side semantics: URL construction, the download name convention, and
// the readiness rules for serving artifacts.
type Gateway struct {
	registry *jobs.Registry
}

// NewGateway constructs a gateway over the given registry.
func NewGateway(registry *jobs.Registry) (*Gateway, error) {
	if registry == nil {
		return nil, fmt.Errorf("gateway requires a registry")
	}
	return &Gateway{registry: registry}, nil
}

// Status returns the payload for one job.
func (g *Gateway) Status(id string) (StatusPayload, error) {
	job, err := g.registry.Get(id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return StatusPayload{}, services.Wrap(services.ErrNotFound, "api", "status", "unknown job id", err)
		}
		return StatusPayload{}, err
	}
	return toPayload(job), nil
}

// List returns payloads for all known jobs, newest first.
func (g *Gateway) List() []StatusPayload {
	records := g.registry.List()
	out := make([]StatusPayload, 0, len(records))
	for _, job := range records {
		out = append(out, toPayload(job))
	}
	return out
}

// ArtifactFor resolves the downloadable result for a job. Jobs that are still
// processing or that failed have no artifact; both cases report not-ready so
// the transport can mask them identically to unknown ids.
func (g *Gateway) ArtifactFor(id string) (Artifact, error) {
	job, err := g.registry.Get(id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return Artifact{}, services.Wrap(services.ErrNotFound, "api", "artifact", "unknown job id", err)
		}
		return Artifact{}, err
	}
	if job.Status != jobs.StatusCompleted || job.ArtifactPath == "" {
		return Artifact{}, services.Wrap(services.ErrNotReady, "api", "artifact", "job has no completed result", nil)
	}
	return Artifact{
		Path:         job.ArtifactPath,
		DownloadName: "segmented_" + job.SourceName,
	}, nil
}

func toPayload(job jobs.Job) StatusPayload {
	payload := StatusPayload{
		JobID:       job.ID,
		Status:      string(job.Status),
		SourceName:  job.SourceName,
		Prompt:      job.Prompt,
		FramesTotal: job.FramesTotal,
		FramesKept:  job.FramesKept,
		SubmittedAt: formatTime(job.SubmittedAt),
		CompletedAt: formatTime(job.CompletedAt),
	}
	switch job.Status {
	case jobs.StatusCompleted:
		payload.VideoURL = "/api/video/" + job.ID
		payload.DownloadURL = "/api/download/" + job.ID
	case jobs.StatusFailed:
		payload.Error = job.ErrorDetail
	}
	return payload
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

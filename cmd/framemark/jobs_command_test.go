package main

import (
	"strings"
	"testing"

	"framemark/internal/api"
)

func TestRenderJobsTable(t *testing.T) {
	jobs := []api.StatusPayload{
		{JobID: "job-1", Status: "completed", SourceName: "clip.mp4", Prompt: "a person", FramesTotal: 10, FramesKept: 9},
		{JobID: "job-2", Status: "processing", SourceName: "cats.mp4", Prompt: "a cat"},
	}

	rendered := renderJobsTable(jobs)
	for _, want := range []string{"job-1", "completed", "clip.mp4", "9/10", "job-2", "processing"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("table missing %q:\n%s", want, rendered)
		}
	}
	if strings.Contains(rendered, "0/0") {
		t.Errorf("jobs without counts should render empty frames column:\n%s", rendered)
	}
}

func TestFilterJobs(t *testing.T) {
	jobs := []api.StatusPayload{
		{JobID: "a", Status: "completed"},
		{JobID: "b", Status: "failed"},
		{JobID: "c", Status: "completed"},
	}
	filtered := filterJobs(jobs, "completed")
	if len(filtered) != 2 {
		t.Fatalf("expected 2 completed jobs, got %d", len(filtered))
	}
	for _, job := range filtered {
		if job.Status != "completed" {
			t.Errorf("unexpected job %s with status %s", job.JobID, job.Status)
		}
	}
}

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Status", statusOK, "completed", false)
	if !strings.Contains(plain, "[OK] completed") {
		t.Errorf("unexpected plain line %q", plain)
	}
	if strings.Contains(plain, ansiGreen) {
		t.Errorf("plain line must not contain color codes: %q", plain)
	}

	colored := renderStatusLine("Status", statusError, "failed", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Errorf("expected colored line, got %q", colored)
	}
}

package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"framemark/internal/config"
	"framemark/internal/jobs"
	"framemark/internal/logging"
	"framemark/internal/pipeline"
	"framemark/internal/services"
	"framemark/internal/stage"
)

type recordingHandler struct {
	name string
	mu   sync.Mutex
	seen []stage.Args
	err  error
	gate chan struct{}
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Execute(ctx context.Context, args stage.Args) error {
	if h.gate != nil {
		select {
		case <-h.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h.mu.Lock()
	h.seen = append(h.seen, args)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(h.name)
}

func newTestScheduler(t *testing.T, stages pipeline.StageSet) (*Scheduler, *jobs.Registry, *config.Config) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Paths.WorkspaceRoot = t.TempDir()
	cfg.Paths.ResultsDir = t.TempDir()
	cfg.Workflow.MaxConcurrentJobs = 2
	cfg.Segmentation.DefaultPrompt = "a person"

	registry := jobs.NewRegistry()
	executor, err := pipeline.NewExecutor(cfg, registry, logging.NewNop(), stages)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	sched, err := New(cfg, registry, executor, logging.NewNop())
	if err != nil {
		t.Fatalf("New scheduler: %v", err)
	}
	return sched, registry, cfg
}

func noopStages() pipeline.StageSet {
	return pipeline.StageSet{
		Extraction:   &recordingHandler{name: "extraction"},
		Segmentation: &recordingHandler{name: "segmentation"},
		Assembly:     &recordingHandler{name: "assembly"},
	}
}

func TestSubmitReturnsBeforeProcessingFinishes(t *testing.T) {
	gate := make(chan struct{})
	stages := noopStages()
	stages.Extraction = &recordingHandler{name: "extraction", gate: gate}
	sched, registry, _ := newTestScheduler(t, stages)

	start := time.Now()
	jobID, err := sched.Submit(context.Background(), Upload{
		Reader: strings.NewReader("video-bytes"),
		Name:   "clip.mp4",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Submit blocked for %s", elapsed)
	}

	record, err := registry.Get(jobID)
	if err != nil {
		t.Fatalf("job not registered at submit time: %v", err)
	}
	if record.Status != jobs.StatusProcessing {
		t.Fatalf("expected processing immediately after submit, got %s", record.Status)
	}

	close(gate)
	sched.Wait()

	record, err = registry.Get(jobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if record.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed after drain, got %s", record.Status)
	}
}

func TestSubmitStoresSourceAndAppliesDefaultPrompt(t *testing.T) {
	stages := noopStages()
	segmentation := stages.Segmentation.(*recordingHandler)
	sched, registry, cfg := newTestScheduler(t, stages)

	jobID, err := sched.Submit(context.Background(), Upload{
		Reader: strings.NewReader("video-bytes"),
		Name:   "../evil/dir/My Clip.mp4",
		Prompt: "   ",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	sched.Wait()

	record, err := registry.Get(jobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if record.Prompt != "a person" {
		t.Errorf("expected default prompt, got %q", record.Prompt)
	}
	if record.SourceName != "My_Clip.mp4" {
		t.Errorf("expected sanitized source name, got %q", record.SourceName)
	}
	if !strings.HasPrefix(record.SourcePath, filepath.Join(cfg.Paths.WorkspaceRoot, jobID)) {
		t.Errorf("source stored outside job workspace: %s", record.SourcePath)
	}
	data, err := os.ReadFile(record.SourcePath)
	if err != nil {
		t.Fatalf("read stored source: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Fatalf("stored source corrupted: %q", string(data))
	}

	segmentation.mu.Lock()
	defer segmentation.mu.Unlock()
	if len(segmentation.seen) != 1 || segmentation.seen[0]["text_prompt"] != "a person" {
		t.Errorf("segmentation did not receive default prompt: %v", segmentation.seen)
	}
}

func TestSubmitRejectsEmptyUploads(t *testing.T) {
	sched, registry, cfg := newTestScheduler(t, noopStages())

	cases := []struct {
		name   string
		upload Upload
	}{
		{"nil reader", Upload{Name: "clip.mp4"}},
		{"empty payload", Upload{Reader: strings.NewReader(""), Name: "clip.mp4"}},
		{"unusable name", Upload{Reader: strings.NewReader("x"), Name: "..."}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := sched.Submit(context.Background(), tc.upload); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	sched.Wait()
	if registry.Len() != 0 {
		t.Fatalf("rejected uploads must not create job records, found %d", registry.Len())
	}
	entries, err := os.ReadDir(cfg.Paths.WorkspaceRoot)
	if err != nil {
		t.Fatalf("read workspace root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected uploads must not leave workspaces, found %d", len(entries))
	}
}

func TestConcurrentSubmissionsStayIsolated(t *testing.T) {
	sched, registry, cfg := newTestScheduler(t, noopStages())

	const jobCount = 20
	ids := make([]string, jobCount)
	var wg sync.WaitGroup
	for i := 0; i < jobCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := sched.Submit(context.Background(), Upload{
				Reader: strings.NewReader(strings.Repeat("x", i+1)),
				Name:   "clip.mp4",
			})
			if err != nil {
				t.Errorf("submit %d: %v", i, err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()
	sched.Wait()

	seen := make(map[string]bool, jobCount)
	for i, id := range ids {
		if id == "" {
			continue
		}
		if seen[id] {
			t.Fatalf("duplicate job id %s", id)
		}
		seen[id] = true

		record, err := registry.Get(id)
		if err != nil {
			t.Fatalf("get job %d: %v", i, err)
		}
		if record.Status != jobs.StatusCompleted {
			t.Errorf("job %s: expected completed, got %s", id, record.Status)
		}
		info, err := os.Stat(record.SourcePath)
		if err != nil {
			t.Fatalf("stat source for %s: %v", id, err)
		}
		if info.Size() != int64(i+1) {
			t.Errorf("job %s: expected %d source bytes, got %d", id, i+1, info.Size())
		}
	}
	if registry.Len() != jobCount {
		t.Fatalf("expected %d job records, got %d", jobCount, registry.Len())
	}

	entries, err := os.ReadDir(cfg.Paths.WorkspaceRoot)
	if err != nil {
		t.Fatalf("read workspace root: %v", err)
	}
	if len(entries) != jobCount {
		t.Fatalf("expected %d workspaces, got %d", jobCount, len(entries))
	}
}

func TestStopRefusesNewSubmissions(t *testing.T) {
	sched, _, _ := newTestScheduler(t, noopStages())
	sched.Stop()

	if _, err := sched.Submit(context.Background(), Upload{
		Reader: strings.NewReader("video-bytes"),
		Name:   "clip.mp4",
	}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error after Stop, got %v", err)
	}
}

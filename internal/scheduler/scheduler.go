package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"framemark/internal/config"
	"framemark/internal/fileutil"
	"framemark/internal/jobs"
	"framemark/internal/logging"
	"framemark/internal/pipeline"
	"framemark/internal/services"
)

// Upload carries one submitted video payload into the scheduler.
type Upload struct {
	Reader io.Reader
	Name   string
	Prompt string
}

// Scheduler accepts uploads, persists them into per-job workspaces, and runs
// the pipeline for each accepted job on a background goroutine. Submission
// never blocks on processing; concurrency is bounded by a weighted semaphore
// sized from configuration.
type Scheduler struct {
	cfg      *config.Config
	registry *jobs.Registry
	executor *pipeline.Executor
	logger   *slog.Logger

	slots *semaphore.Weighted
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New constructs a scheduler over the given registry and pipeline executor.
func New(cfg *config.Config, registry *jobs.Registry, executor *pipeline.Executor, logger *slog.Logger) (*Scheduler, error) {
	if cfg == nil || registry == nil || executor == nil {
		return nil, fmt.Errorf("scheduler requires config, registry, and executor")
	}
	slots := int64(cfg.Workflow.MaxConcurrentJobs)
	if slots < 1 {
		slots = 1
	}
	return &Scheduler{
		cfg:      cfg,
		registry: registry,
		executor: executor,
		logger:   logging.NewComponentLogger(logger, "scheduler"),
		slots:    semaphore.NewWeighted(slots),
	}, nil
}

// Submit validates and stages an upload, registers the job, and schedules
// processing. It returns the new job identifier as soon as the job is
// accepted; pipeline outcome is observed through the registry.
func (s *Scheduler) Submit(ctx context.Context, upload Upload) (string, error) {
	if upload.Reader == nil {
		return "", services.Wrap(services.ErrValidation, "scheduler", "submit", "no video payload provided", nil)
	}
	name := fileutil.SanitizeName(upload.Name)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "scheduler", "submit", "video filename is empty or invalid", nil)
	}
	prompt := strings.TrimSpace(upload.Prompt)
	if prompt == "" {
		prompt = s.cfg.Segmentation.DefaultPrompt
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", services.Wrap(services.ErrValidation, "scheduler", "submit", "scheduler is shutting down", nil)
	}
	s.mu.Unlock()

	jobID := uuid.New().String()
	workspace := filepath.Join(s.cfg.Paths.WorkspaceRoot, jobID)
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "scheduler", "submit", "failed to create job workspace", err)
	}

	sourcePath := filepath.Join(workspace, name)
	written, err := fileutil.WriteReader(sourcePath, upload.Reader)
	if err != nil {
		os.RemoveAll(workspace)
		return "", services.Wrap(services.ErrConfiguration, "scheduler", "submit", "failed to store uploaded video", err)
	}
	if written == 0 {
		os.RemoveAll(workspace)
		return "", services.Wrap(services.ErrValidation, "scheduler", "submit", "uploaded video is empty", nil)
	}

	job := jobs.Job{
		ID:            jobID,
		SourceName:    name,
		Prompt:        prompt,
		WorkspacePath: workspace,
		SourcePath:    sourcePath,
	}
	if err := s.registry.Create(job); err != nil {
		os.RemoveAll(workspace)
		return "", services.Wrap(services.ErrConfiguration, "scheduler", "submit", "failed to register job", err)
	}

	logger := logging.WithContext(services.WithJobID(ctx, jobID), s.logger)
	logger.Info("job accepted",
		logging.String(logging.FieldEventType, "job_accepted"),
		logging.String("source", name),
		logging.String("prompt", prompt),
		logging.Int64("bytes", written),
	)

	s.wg.Add(1)
	go s.process(job)

	return jobID, nil
}

// process runs on its own goroutine. It blocks on a concurrency slot, not on
// the caller, so bursts queue here rather than at submission.
func (s *Scheduler) process(job jobs.Job) {
	defer s.wg.Done()

	ctx := services.WithJobID(context.Background(), job.ID)
	logger := logging.WithContext(ctx, s.logger)

	if err := s.slots.Acquire(ctx, 1); err != nil {
		logger.Error("failed to acquire processing slot", logging.Error(err))
		if markErr := s.registry.MarkFailed(job.ID, "processing slot unavailable"); markErr != nil {
			logger.Error("failed to record slot failure", logging.Error(markErr))
		}
		return
	}
	defer s.slots.Release(1)

	if err := s.executor.Run(ctx, job); err != nil {
		logger.Error("job processing failed", logging.Error(err))
	}
}

// Wait blocks until all in-flight jobs have finished. New submissions are
// still accepted; call Stop first during shutdown.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Stop refuses further submissions and waits for in-flight jobs to drain.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

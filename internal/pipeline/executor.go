package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"framemark/internal/config"
	"framemark/internal/fileutil"
	"framemark/internal/jobs"
	"framemark/internal/logging"
	"framemark/internal/services"
	"framemark/internal/stage"
)

// Workspace subdirectories owned by the executor.
const (
	framesDirName    = "frames"
	segmentedDirName = "segmented"
)

// StageSet bundles the three concrete stage handlers the executor sequences.
type StageSet struct {
	Extraction   stage.Handler
	Segmentation stage.Handler
	Assembly     stage.Handler
}

func (s StageSet) validate() error {
	if s.Extraction == nil || s.Segmentation == nil || s.Assembly == nil {
		return fmt.Errorf("pipeline requires extraction, segmentation, and assembly handlers")
	}
	return nil
}

// Executor drives one job through extraction, segmentation, and assembly in
// strict order. The first stage to fail transitions the job to failed with
// that stage's detail; remaining stages are skipped. When all three succeed
// the job is completed with the assembled artifact path.
type Executor struct {
	cfg      *config.Config
	registry *jobs.Registry
	logger   *slog.Logger
	stages   StageSet
}

// NewExecutor constructs a pipeline executor.
func NewExecutor(cfg *config.Config, registry *jobs.Registry, logger *slog.Logger, stages StageSet) (*Executor, error) {
	if cfg == nil || registry == nil {
		return nil, fmt.Errorf("pipeline requires config and registry")
	}
	if err := stages.validate(); err != nil {
		return nil, err
	}
	return &Executor{
		cfg:      cfg,
		registry: registry,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		stages:   stages,
	}, nil
}

// ArtifactPath returns the results location for a job's assembled video.
func (e *Executor) ArtifactPath(jobID string) string {
	return filepath.Join(e.cfg.Paths.ResultsDir, jobID+".mp4")
}

// Run executes the full pipeline for one accepted job. Errors are recorded on
// the job record and returned for observability; they are never surfaced to
// the submitting caller.
func (e *Executor) Run(ctx context.Context, job jobs.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, e.logger)

	framesDir := filepath.Join(job.WorkspacePath, framesDirName)
	segmentedDir := filepath.Join(job.WorkspacePath, segmentedDirName)
	artifact := e.ArtifactPath(job.ID)

	steps := []struct {
		handler stage.Handler
		args    stage.Args
	}{
		{e.stages.Extraction, stage.Args{
			"video_path":    job.SourcePath,
			"output_folder": framesDir,
		}},
		{e.stages.Segmentation, stage.Args{
			"input_dir":   framesDir,
			"output_dir":  segmentedDir,
			"text_prompt": job.Prompt,
		}},
		{e.stages.Assembly, stage.Args{
			"input_dir":    segmentedDir,
			"output_video": artifact,
		}},
	}

	for _, step := range steps {
		if err := e.runStage(ctx, logger, job.ID, step.handler, step.args); err != nil {
			return err
		}
		if step.handler.Name() == e.stages.Segmentation.Name() {
			e.recordFrameCounts(logger, job.ID, framesDir, segmentedDir)
		}
	}

	if err := e.registry.MarkCompleted(job.ID, artifact); err != nil {
		logger.Error("failed to record completion", logging.Error(err))
		return err
	}
	logger.Info("pipeline completed",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.String("artifact", artifact),
	)
	return nil
}

func (e *Executor) runStage(ctx context.Context, logger *slog.Logger, jobID string, handler stage.Handler, args stage.Args) error {
	stageCtx := services.WithStage(ctx, handler.Name())
	stageLogger := logging.WithContext(stageCtx, logger)

	stageStart := time.Now()
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := handler.Execute(stageCtx, args); err != nil {
		detail := services.Detail(err)
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Error(err),
		)
		if markErr := e.registry.MarkFailed(jobID, detail); markErr != nil {
			stageLogger.Error("failed to record stage failure", logging.Error(markErr))
		}
		return err
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (e *Executor) recordFrameCounts(logger *slog.Logger, jobID, framesDir, segmentedDir string) {
	total, err := fileutil.CountImages(framesDir)
	if err != nil {
		logger.Debug("frame count unavailable", logging.Error(err))
		return
	}
	kept, err := fileutil.CountImages(segmentedDir)
	if err != nil {
		logger.Debug("frame count unavailable", logging.Error(err))
		return
	}
	if err := e.registry.SetFrameCounts(jobID, total, kept); err != nil {
		logger.Debug("failed to record frame counts", logging.Error(err))
	}
}

// Health reports the readiness of each configured stage handler.
func (e *Executor) Health(ctx context.Context) []stage.Health {
	return []stage.Health{
		e.stages.Extraction.HealthCheck(ctx),
		e.stages.Segmentation.HealthCheck(ctx),
		e.stages.Assembly.HealthCheck(ctx),
	}
}

// Package extraction turns a source video into an ordered directory of frame
// images by driving the configured ffmpeg binary.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"framemark/internal/config"
	"framemark/internal/fileutil"
	"framemark/internal/logging"
	"framemark/internal/services"
	"framemark/internal/stage"
)

// StageName identifies the extraction stage in logs and error details.
const StageName = "extraction"

// Frame file names are zero-padded so lexicographic order equals capture
// order; downstream stages depend on this.
const framePattern = "frame_%04d.jpg"

// Option configures the extractor.
type Option func(*Extractor)

// WithExecutor injects a custom command executor (primarily for tests).
func WithExecutor(exec stage.Executor) Option {
	return func(e *Extractor) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// Extractor invokes ffmpeg to explode a video into numbered frames.
type Extractor struct {
	binary  string
	timeout time.Duration
	exec    stage.Executor
	logger  *slog.Logger
}

// New constructs the extraction stage handler.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		binary:  cfg.Extraction.Command,
		timeout: time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
		exec:    stage.CommandExecutor{},
		logger:  logging.NewComponentLogger(logger, StageName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the stage identifier.
func (e *Extractor) Name() string { return StageName }

// Execute runs frame extraction. Required args: video_path, output_folder.
// A run that produces zero frames fails the stage.
func (e *Extractor) Execute(ctx context.Context, args stage.Args) error {
	videoPath, err := args.Get("video_path")
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "arguments", err.Error(), nil)
	}
	outputFolder, err := args.Get("output_folder")
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "arguments", err.Error(), nil)
	}
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "prepare output folder", "", err)
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmdArgs := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-start_number", "0",
		"-q:v", "2",
		filepath.Join(outputFolder, framePattern),
	}
	if err := e.exec.Run(runCtx, e.binary, cmdArgs); err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "run "+e.binary, "", err)
	}

	count, err := fileutil.CountImages(outputFolder)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "inspect output", "", err)
	}
	if count == 0 {
		return services.Wrap(services.ErrEmptyOutput, StageName, "verify output", "no frames extracted from video", nil)
	}

	e.logger.Debug("frames extracted",
		logging.Int("frame_count", count),
		logging.String("output_folder", outputFolder),
	)
	return nil
}

// HealthCheck reports whether the extraction binary resolves on PATH.
func (e *Extractor) HealthCheck(context.Context) stage.Health {
	if _, err := exec.LookPath(e.binary); err != nil {
		return stage.Unhealthy(StageName, fmt.Sprintf("binary %q not found", e.binary))
	}
	return stage.Healthy(StageName)
}

// Package segmentation drives the external text-prompt annotation tool that
// turns extracted frames into highlighted ones.
package segmentation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"framemark/internal/config"
	"framemark/internal/fileutil"
	"framemark/internal/logging"
	"framemark/internal/services"
	"framemark/internal/stage"
)

// StageName identifies the segmentation stage in logs and error details.
const StageName = "segmentation"

// OutputPrefix is prepended by the annotation tool to each processed frame
// name, so output ordering mirrors input ordering.
const OutputPrefix = "segmented_"

// Option configures the segmenter.
type Option func(*Segmenter)

// WithExecutor injects a custom command executor (primarily for tests).
func WithExecutor(exec stage.Executor) Option {
	return func(s *Segmenter) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// Segmenter invokes the annotation tool over a directory of frames.
//
// The tool is best-effort per frame: a malformed frame is skipped rather than
// aborting the run. The stage as a whole fails only when the output directory
// ends up empty.
type Segmenter struct {
	binary    string
	extraArgs []string
	timeout   time.Duration
	exec      stage.Executor
	logger    *slog.Logger
}

// New constructs the segmentation stage handler.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Segmenter {
	s := &Segmenter{
		binary:    cfg.Segmentation.Command,
		extraArgs: append([]string(nil), cfg.Segmentation.ExtraArgs...),
		timeout:   time.Duration(cfg.Segmentation.TimeoutSeconds) * time.Second,
		exec:      stage.CommandExecutor{},
		logger:    logging.NewComponentLogger(logger, StageName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stage identifier.
func (s *Segmenter) Name() string { return StageName }

// Execute runs segmentation. Required args: input_dir, output_dir, text_prompt.
// Partial yields are logged, not fatal; zero yield fails the stage.
func (s *Segmenter) Execute(ctx context.Context, args stage.Args) error {
	inputDir, err := args.Get("input_dir")
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "arguments", err.Error(), nil)
	}
	outputDir, err := args.Get("output_dir")
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "arguments", err.Error(), nil)
	}
	prompt, err := args.Get("text_prompt")
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "arguments", err.Error(), nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "prepare output dir", "", err)
	}

	total, err := fileutil.CountImages(inputDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "inspect input", "", err)
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmdArgs := []string{
		"--input_dir", inputDir,
		"--output_dir", outputDir,
		"--text_prompt", prompt,
	}
	cmdArgs = append(cmdArgs, s.extraArgs...)
	if err := s.exec.Run(runCtx, s.binary, cmdArgs); err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "run "+s.binary, "", err)
	}

	kept, err := fileutil.CountImages(outputDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "inspect output", "", err)
	}
	if kept == 0 {
		return services.Wrap(services.ErrEmptyOutput, StageName, "verify output", "no frames survived segmentation", nil)
	}
	if kept < total {
		s.logger.Warn("segmentation skipped frames",
			logging.String(logging.FieldEventType, "partial_segmentation"),
			logging.Int("frames_total", total),
			logging.Int("frames_kept", kept),
		)
	}
	return nil
}

// HealthCheck reports whether the segmentation binary resolves on PATH.
func (s *Segmenter) HealthCheck(context.Context) stage.Health {
	if _, err := exec.LookPath(s.binary); err != nil {
		return stage.Unhealthy(StageName, fmt.Sprintf("binary %q not found", s.binary))
	}
	return stage.Healthy(StageName)
}

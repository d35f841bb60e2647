// Package assembly re-encodes a directory of processed frames into the final
// output video via the configured ffmpeg binary.
package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"framemark/internal/config"
	"framemark/internal/fileutil"
	"framemark/internal/logging"
	"framemark/internal/services"
	"framemark/internal/stage"
)

// StageName identifies the assembly stage in logs and error details.
const StageName = "assembly"

// Option configures the assembler.
type Option func(*Assembler)

// WithExecutor injects a custom command executor (primarily for tests).
func WithExecutor(exec stage.Executor) Option {
	return func(a *Assembler) {
		if exec != nil {
			a.exec = exec
		}
	}
}

// Assembler joins ordered frames into a video at a fixed frame rate.
type Assembler struct {
	binary    string
	frameRate int
	timeout   time.Duration
	exec      stage.Executor
	logger    *slog.Logger
}

// New constructs the assembly stage handler.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		binary:    cfg.Assembly.Command,
		frameRate: cfg.Assembly.FrameRate,
		timeout:   time.Duration(cfg.Assembly.TimeoutSeconds) * time.Second,
		exec:      stage.CommandExecutor{},
		logger:    logging.NewComponentLogger(logger, StageName),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the stage identifier.
func (a *Assembler) Name() string { return StageName }

// Execute runs video assembly. Required args: input_dir, output_video.
// An empty input directory fails before the tool is invoked; frame order is
// the lexicographic order of the input file names.
func (a *Assembler) Execute(ctx context.Context, args stage.Args) error {
	inputDir, err := args.Get("input_dir")
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "arguments", err.Error(), nil)
	}
	outputVideo, err := args.Get("output_video")
	if err != nil {
		return services.Wrap(services.ErrValidation, StageName, "arguments", err.Error(), nil)
	}

	frames, err := fileutil.ListImages(inputDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "inspect input", "", err)
	}
	if len(frames) == 0 {
		return services.Wrap(services.ErrEmptyOutput, StageName, "verify input", "no frames to assemble", nil)
	}
	if err := os.MkdirAll(filepath.Dir(outputVideo), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "prepare output dir", "", err)
	}

	runCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	// Glob matching keeps lexicographic frame order regardless of the
	// segmentation tool's name prefix.
	cmdArgs := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-framerate", strconv.Itoa(a.frameRate),
		"-pattern_type", "glob",
		"-i", filepath.Join(inputDir, "*.jpg"),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		outputVideo,
	}
	if err := a.exec.Run(runCtx, a.binary, cmdArgs); err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "run "+a.binary, "", err)
	}

	info, err := os.Stat(outputVideo)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "verify output", "assembled video missing", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrEmptyOutput, StageName, "verify output", "assembled video is empty", nil)
	}

	a.logger.Debug("video assembled",
		logging.Int("frame_count", len(frames)),
		logging.String("output_video", outputVideo),
	)
	return nil
}

// HealthCheck reports whether the assembly binary resolves on PATH.
func (a *Assembler) HealthCheck(context.Context) stage.Health {
	if _, err := exec.LookPath(a.binary); err != nil {
		return stage.Unhealthy(StageName, fmt.Sprintf("binary %q not found", a.binary))
	}
	return stage.Healthy(StageName)
}

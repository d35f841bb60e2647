package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"framemark/internal/config"
	"framemark/internal/deps"
	"framemark/internal/jobs"
	"framemark/internal/logging"
	"framemark/internal/scheduler"
	"framemark/internal/server"
)

// Daemon coordinates the HTTP API and background processing and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *jobs.Registry
	scheduler *scheduler.Scheduler
	server    *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	LockFilePath string
	APIBind      string
	TrackedJobs  int
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, registry *jobs.Registry, sched *scheduler.Scheduler, srv *server.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || registry == nil || sched == nil || srv == nil {
		return nil, errors.New("daemon requires config, registry, scheduler, and server")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "framemarkd.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		registry:  registry,
		scheduler: sched,
		server:    srv,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another framemark daemon instance is already running")
	}

	statuses := deps.CheckBinaries(deps.Required(d.cfg))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		d.logger.Warn("required tools unavailable, jobs using them will fail",
			logging.String("missing", strings.Join(missing, ", ")),
		)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.server.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("framemark daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.Addr()),
		logging.String("workspace_root", d.cfg.Paths.WorkspaceRoot),
	)
	// Job state lives in memory only; a restart forgets every job.
	d.logger.Info("job registry is volatile, records do not survive restarts")
	return nil
}

// Stop shuts down the API, drains in-flight jobs, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	d.scheduler.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("framemark daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status reports runtime information for diagnostics.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		APIBind:      d.cfg.Paths.APIBind,
		TrackedJobs:  d.registry.Len(),
		Dependencies: deps.CheckBinaries(deps.Required(d.cfg)),
	}
}

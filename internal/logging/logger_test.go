package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framemark/internal/config"
	"framemark/internal/logging"
	"framemark/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	logger.Info("daemon ready", logging.String("bind", "127.0.0.1:0"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "framemark.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "daemon ready") {
		t.Fatalf("log file missing message: %q", string(data))
	}
	if !strings.Contains(string(data), "bind=127.0.0.1:0") {
		t.Fatalf("log file missing attribute: %q", string(data))
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	base := t.TempDir()
	logPath := filepath.Join(base, "out.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := services.WithJobID(context.Background(), "job-123")
	ctx = services.WithStage(ctx, "extraction")

	logging.WithContext(ctx, logger).Info("stage started")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "job_id=job-123") {
		t.Fatalf("missing job_id field: %q", out)
	}
	if !strings.Contains(out, "stage=extraction") {
		t.Fatalf("missing stage field: %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("must not panic", logging.Error(nil))
}

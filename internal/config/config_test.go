package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framemark/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWorkspaces := filepath.Join(tempHome, ".local", "share", "framemark", "workspaces")
	if cfg.Paths.WorkspaceRoot != wantWorkspaces {
		t.Fatalf("unexpected workspace root: got %q want %q", cfg.Paths.WorkspaceRoot, wantWorkspaces)
	}
	if cfg.Paths.APIBind != "127.0.0.1:5001" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Extraction.Command != "ffmpeg" {
		t.Fatalf("unexpected extraction command: %q", cfg.Extraction.Command)
	}
	if cfg.Segmentation.DefaultPrompt != "a person" {
		t.Fatalf("unexpected default prompt: %q", cfg.Segmentation.DefaultPrompt)
	}
	if cfg.Assembly.FrameRate != 30 {
		t.Fatalf("unexpected frame rate: %d", cfg.Assembly.FrameRate)
	}
	if cfg.Workflow.MaxConcurrentJobs != 4 {
		t.Fatalf("unexpected max concurrent jobs: %d", cfg.Workflow.MaxConcurrentJobs)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkspaceRoot, cfg.Paths.ResultsDir, cfg.Paths.LogDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadReadsTOMLOverrides(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "framemark.toml")
	content := strings.Join([]string{
		"[paths]",
		`workspace_root = "` + filepath.Join(base, "work") + `"`,
		`results_dir = "` + filepath.Join(base, "out") + `"`,
		`api_bind = "0.0.0.0:8080"`,
		"",
		"[segmentation]",
		`command = "/opt/clipseg/bin/annotate"`,
		`default_prompt = "a dog"`,
		"",
		"[workflow]",
		"max_concurrent_jobs = 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.APIBind != "0.0.0.0:8080" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Segmentation.Command != "/opt/clipseg/bin/annotate" {
		t.Fatalf("unexpected segmentation command: %q", cfg.Segmentation.Command)
	}
	if cfg.Segmentation.DefaultPrompt != "a dog" {
		t.Fatalf("unexpected default prompt: %q", cfg.Segmentation.DefaultPrompt)
	}
	if cfg.Workflow.MaxConcurrentJobs != 2 {
		t.Fatalf("unexpected max concurrent jobs: %d", cfg.Workflow.MaxConcurrentJobs)
	}
	// Unset sections keep defaults.
	if cfg.Assembly.Command != "ffmpeg" {
		t.Fatalf("unexpected assembly command: %q", cfg.Assembly.Command)
	}
}

func TestValidateRejectsSharedDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkspaceRoot = "/tmp/framemark-test"
	cfg.Paths.ResultsDir = "/tmp/framemark-test"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for shared workspace/results dir")
	}
}

func TestValidateRejectsNonPositiveTimeouts(t *testing.T) {
	cfg := config.Default()
	cfg.Extraction.TimeoutSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative timeout")
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[segmentation]") {
		t.Fatal("expected sample to document the segmentation section")
	}
}

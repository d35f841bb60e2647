package deps

import (
	"os"
	"path/filepath"
	"testing"

	"framemark/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for unset command: %#v", results[2])
	}
}

func TestRequiredCollapsesSharedBinary(t *testing.T) {
	cfg := &config.Config{}
	cfg.Extraction.Command = "ffmpeg"
	cfg.Segmentation.Command = "clipseg-annotate"
	cfg.Assembly.Command = "ffmpeg"

	reqs := Required(cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements for shared binary, got %d", len(reqs))
	}

	cfg.Assembly.Command = "ffmpeg-custom"
	reqs = Required(cfg)
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements for distinct binaries, got %d", len(reqs))
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "A", Available: true},
		{Name: "B", Available: false},
		{Name: "C", Available: false, Optional: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "B" {
		t.Fatalf("unexpected missing list: %v", missing)
	}
}

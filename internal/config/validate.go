package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStages(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkspaceRoot) == "" {
		return errors.New("paths.workspace_root must be set")
	}
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		return errors.New("paths.results_dir must be set")
	}
	if c.Paths.WorkspaceRoot == c.Paths.ResultsDir {
		return errors.New("paths.workspace_root and paths.results_dir must differ")
	}
	return nil
}

func (c *Config) validateStages() error {
	if strings.TrimSpace(c.Extraction.Command) == "" {
		return errors.New("extraction.command must be set")
	}
	if strings.TrimSpace(c.Segmentation.Command) == "" {
		return errors.New("segmentation.command must be set")
	}
	if strings.TrimSpace(c.Assembly.Command) == "" {
		return errors.New("assembly.command must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"extraction.timeout_seconds":   c.Extraction.TimeoutSeconds,
		"segmentation.timeout_seconds": c.Segmentation.TimeoutSeconds,
		"assembly.timeout_seconds":     c.Assembly.TimeoutSeconds,
		"assembly.frame_rate":          c.Assembly.FrameRate,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.max_concurrent_jobs": c.Workflow.MaxConcurrentJobs,
		"workflow.max_upload_mib":      c.Workflow.MaxUploadMiB,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"framemark/internal/config"
)

// Requirement defines an external tool the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Required derives the dependency list from the configured stage commands.
func Required(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	reqs := []Requirement{
		{
			Name:        "Frame extraction",
			Command:     cfg.Extraction.Command,
			Description: "Decodes uploaded videos into frame images",
		},
		{
			Name:        "Segmentation",
			Command:     cfg.Segmentation.Command,
			Description: "Applies the text prompt to each extracted frame",
		},
	}
	// Extraction and assembly usually share one binary; only list it twice
	// when they are configured differently.
	if cfg.Assembly.Command != cfg.Extraction.Command {
		reqs = append(reqs, Requirement{
			Name:        "Video assembly",
			Command:     cfg.Assembly.Command,
			Description: "Re-encodes segmented frames into the result video",
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, status.Name)
		}
	}
	return missing
}

package stage

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for testability. Implementations run
// the named binary and surface combined diagnostic output on failure.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// CommandExecutor executes stage binaries via os/exec.
type CommandExecutor struct{}

// Run invokes the binary and folds captured output into the returned error so
// stage failures carry the tool's diagnostics.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return fmt.Errorf("%s: %w", binary, err)
		}
		return fmt.Errorf("%s: %w: %s", binary, err, detail)
	}
	return nil
}

package stage

import (
	"context"
	"fmt"
	"strings"
)

// Args carries the named string arguments of one stage invocation. Argument
// names are part of the boundary contract with the external stage tools.
type Args map[string]string

// Get returns the named argument, failing when it is absent or blank.
func (a Args) Get(name string) (string, error) {
	value, ok := a[name]
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("stage argument %q is required", name)
	}
	return value, nil
}

// Handler is the contract the pipeline executor needs from each stage. A
// handler interprets its Args, drives the external tool, and verifies its own
// output postcondition; it carries no pipeline semantics.
type Handler interface {
	Name() string
	Execute(ctx context.Context, args Args) error
	HealthCheck(ctx context.Context) Health
}

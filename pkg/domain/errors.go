package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEntryPoint is returned when a graph has no node to start a run from.
var ErrNoEntryPoint = errors.New("no entry point found")

// ErrStepBudgetExceeded is returned when a run visits more nodes than its budget allows.
// This usually means the graph contains an execution cycle.
var ErrStepBudgetExceeded = errors.New("step budget exceeded: graph is runaway or cyclic")

// ErrNoFunction is returned when a node without an entry-function name is executed.
var ErrNoFunction = errors.New("no function")

// ErrFunctionNotFound is returned when the entry function is still missing after evaluation.
var ErrFunctionNotFound = errors.New("function not found after evaluation")

// ErrGraphNotFound is returned by loaders when no graph matches the requested name.
var ErrGraphNotFound = errors.New("graph not found")

// ErrKindMismatch is returned when a connection joins pins of different kinds.
var ErrKindMismatch = errors.New("pin kind mismatch")

// ErrDirectionMismatch is returned when a connection does not run from an output to an input.
var ErrDirectionMismatch = errors.New("pin direction mismatch")

// NodeError is the consolidated failure of a single node call.
type NodeError struct {
	Title   string
	Message string
	Stderr  string
	Err     error
}

func (e *NodeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "node %q failed: %s", e.Title, e.Message)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		fmt.Fprintf(&sb, "\n[stderr] %s", stderr)
	}
	return sb.String()
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

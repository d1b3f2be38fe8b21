package domain

import (
	"strings"
	"time"
)

// Result is the outcome of one successful node call.
type Result struct {
	Value    any
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Captured joins the captured text streams. Error-stream output is kept distinct.
func (r *Result) Captured() string {
	out := strings.TrimSpace(r.Stdout)
	if stderr := strings.TrimSpace(r.Stderr); stderr != "" {
		if out != "" {
			out += "\n"
		}
		out += "[stderr] " + stderr
	}
	return out
}

// RunStatus summarizes how a run ended.
type RunStatus string

const (
	RunCompleted    RunStatus = "completed"
	RunNoEntryPoint RunStatus = "no_entry_point"
	RunAborted      RunStatus = "aborted"
	RunCanceled     RunStatus = "canceled"
)

// NodeFailure records a node call that failed and abandoned its branch.
type NodeFailure struct {
	NodeID string `json:"node_id"`
	Title  string `json:"title"`
	Error  string `json:"error"`
}

// Report is what the coordinator returns for one run.
type Report struct {
	RunID    string
	Status   RunStatus
	Values   *PinValues
	Visits   int
	Calls    int
	// Trace lists the IDs of visited nodes in visit order; fan-in nodes appear once per visit.
	Trace    []string
	Skipped  []string
	Failures []NodeFailure
	Duration time.Duration
}

// Failed reports whether any node call failed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

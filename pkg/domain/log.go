package domain

import (
	"fmt"
	"time"
)

// LogLevel grades a narration line.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogEntry is one human-readable progress line of a run.
type LogEntry struct {
	Time    time.Time `json:"time"`
	RunID   string    `json:"run_id,omitempty"`
	Level   LogLevel  `json:"level"`
	Node    string    `json:"node,omitempty"`
	Message string    `json:"message"`
}

func (e LogEntry) String() string {
	if e.Node != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Level, e.Node, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Level, e.Message)
}

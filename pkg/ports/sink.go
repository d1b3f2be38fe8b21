package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// LogSink receives the narration of a run.
// Sinks handle their own delivery errors; a failing sink must not stop a run.
type LogSink interface {
	Log(ctx context.Context, entry domain.LogEntry)
}

// LogSinkFunc adapts a function to the LogSink interface.
type LogSinkFunc func(ctx context.Context, entry domain.LogEntry)

// Log calls f(ctx, entry).
func (f LogSinkFunc) Log(ctx context.Context, entry domain.LogEntry) {
	f(ctx, entry)
}

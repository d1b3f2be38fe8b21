package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
)

// LoggingHooks narrates the walk as structured log records.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_start", "run_id", e.RunID, "graph", e.Graph)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			attrs := []any{"run_id", e.RunID, "graph", e.Graph, "status", e.Status}
			if e.Report != nil {
				attrs = append(attrs, "calls", e.Report.Calls, "failures", len(e.Report.Failures), "duration", e.Report.Duration)
			}
			logger.InfoContext(ctx, "run_end", attrs...)
		},
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "run_id", e.RunID, "node_id", e.NodeID, "reroute", e.Reroute)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_leave", "run_id", e.RunID, "node_id", e.NodeID, "duration", e.Duration)
		},
		OnNodeSkip: func(ctx context.Context, e *domain.NodeEvent) {
			logger.InfoContext(ctx, "node_skip", "run_id", e.RunID, "node_id", e.NodeID)
		},
		OnNodeError: func(ctx context.Context, e *domain.NodeEvent) {
			logger.WarnContext(ctx, "node_error", "run_id", e.RunID, "node_id", e.NodeID, "err", e.Err)
		},
	}
}

// Combine returns hooks that call every non-nil hook of each set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, s := range sets {
		out.OnRunStart = chainRun(out.OnRunStart, s.OnRunStart)
		out.OnRunEnd = chainRun(out.OnRunEnd, s.OnRunEnd)
		out.OnNodeEnter = chainNode(out.OnNodeEnter, s.OnNodeEnter)
		out.OnNodeLeave = chainNode(out.OnNodeLeave, s.OnNodeLeave)
		out.OnNodeSkip = chainNode(out.OnNodeSkip, s.OnNodeSkip)
		out.OnNodeError = chainNode(out.OnNodeError, s.OnNodeError)
	}
	return out
}

func chainRun(a, b func(context.Context, *domain.RunEvent)) func(context.Context, *domain.RunEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.RunEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainNode(a, b func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

package logsink

import (
	"context"
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
)

// Slog forwards entries to a structured logger.
type Slog struct {
	logger *slog.Logger
}

// NewSlog creates a sink logging through logger.
func NewSlog(logger *slog.Logger) *Slog {
	return &Slog{logger: logger}
}

// Log emits the entry at the matching slog level.
func (s *Slog) Log(ctx context.Context, e domain.LogEntry) {
	attrs := []any{"run_id", e.RunID}
	if e.Node != "" {
		attrs = append(attrs, "node", e.Node)
	}
	s.logger.Log(ctx, slogLevel(e.Level), e.Message, attrs...)
}

func slogLevel(l domain.LogLevel) slog.Level {
	switch l {
	case domain.LevelDebug:
		return slog.LevelDebug
	case domain.LevelWarn:
		return slog.LevelWarn
	case domain.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

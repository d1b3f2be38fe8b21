package logsink

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Multi delivers every entry to each sink in order.
type Multi []ports.LogSink

// Log fans the entry out.
func (m Multi) Log(ctx context.Context, e domain.LogEntry) {
	for _, s := range m {
		if s != nil {
			s.Log(ctx, e)
		}
	}
}

// Filter drops entries below min before passing them to next.
func Filter(min domain.LogLevel, next ports.LogSink) ports.LogSink {
	floor := rank(min)
	return ports.LogSinkFunc(func(ctx context.Context, e domain.LogEntry) {
		if rank(e.Level) >= floor {
			next.Log(ctx, e)
		}
	})
}

func rank(l domain.LogLevel) int {
	switch l {
	case domain.LevelDebug:
		return 0
	case domain.LevelWarn:
		return 2
	case domain.LevelError:
		return 3
	default:
		return 1
	}
}

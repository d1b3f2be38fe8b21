package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// StreamManager fans run narration out to connected SSE clients.
// It implements ports.LogSink so it can be attached to an engine.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]string // channel -> run ID filter ("" means every run)
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan string]string),
	}
}

// Subscribe registers a client. runID limits delivery to one run when not empty.
func (sm *StreamManager) Subscribe(runID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 64)
	sm.subscribers[ch] = runID

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Log broadcasts the entry as JSON. Slow clients lose messages rather than block a run.
func (sm *StreamManager) Log(_ context.Context, e domain.LogEntry) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	msg := string(data)

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch, filter := range sm.subscribers {
		if filter != "" && filter != e.RunID {
			continue
		}
		select {
		case ch <- msg:
		default:
			slog.Warn("SSE: Client buffer full, dropping message", "run_id", e.RunID)
		}
	}
}

// Len returns the number of connected clients.
func (sm *StreamManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

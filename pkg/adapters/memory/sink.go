package memory

import (
	"context"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// DefaultSinkCapacity bounds how many entries a Sink keeps.
const DefaultSinkCapacity = 1000

// Sink implements ports.LogSink by keeping the most recent entries in memory.
// Safe for concurrent use.
type Sink struct {
	mu       sync.RWMutex
	entries  []domain.LogEntry
	capacity int
}

// NewSink creates a Sink with DefaultSinkCapacity.
func NewSink() *Sink {
	return NewSinkWithCapacity(DefaultSinkCapacity)
}

// NewSinkWithCapacity creates a Sink keeping at most n entries; n <= 0 means unbounded.
func NewSinkWithCapacity(n int) *Sink {
	return &Sink{capacity: n}
}

// Log appends the entry, dropping the oldest one when full.
func (s *Sink) Log(_ context.Context, entry domain.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if s.capacity > 0 && len(s.entries) > s.capacity {
		s.entries = s.entries[len(s.entries)-s.capacity:]
	}
}

// Entries returns a copy of the kept entries, oldest first.
func (s *Sink) Entries() []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// ByRun returns the entries of one run.
func (s *Sink) ByRun(runID string) []domain.LogEntry {
	return s.filter(func(e domain.LogEntry) bool { return e.RunID == runID })
}

// ByNode returns the entries naming one node.
func (s *Sink) ByNode(node string) []domain.LogEntry {
	return s.filter(func(e domain.LogEntry) bool { return e.Node == node })
}

// Clear drops every entry.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (s *Sink) filter(keep func(domain.LogEntry) bool) []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.LogEntry
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

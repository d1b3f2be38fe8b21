// Package perf keeps a rolling, size-bounded timing history per node.
package perf

import (
	"sort"
	"sync"
	"time"
)

// DefaultHistorySize bounds the samples kept per node.
const DefaultHistorySize = 100

// Stats summarizes the samples recorded for one node.
type Stats struct {
	Count int           `json:"count"`
	Last  time.Duration `json:"last"`
	Mean  time.Duration `json:"mean"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

// Tracker records call durations keyed by node title.
// Safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	size    int
	history map[string][]time.Duration
}

// NewTracker creates a tracker keeping at most size samples per node.
// A non-positive size selects DefaultHistorySize.
func NewTracker(size int) *Tracker {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &Tracker{
		size:    size,
		history: make(map[string][]time.Duration),
	}
}

// Record appends a sample, dropping the oldest once the bound is reached.
func (t *Tracker) Record(title string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	samples := append(t.history[title], d)
	if len(samples) > t.size {
		samples = samples[len(samples)-t.size:]
	}
	t.history[title] = samples
}

// History returns a copy of the samples recorded for title, oldest first.
func (t *Tracker) History(title string) []time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	samples := t.history[title]
	out := make([]time.Duration, len(samples))
	copy(out, samples)
	return out
}

// Stats summarizes the samples recorded for title.
func (t *Tracker) Stats(title string) (Stats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	samples, ok := t.history[title]
	if !ok || len(samples) == 0 {
		return Stats{}, false
	}
	return summarize(samples), true
}

// All summarizes every node with at least one sample.
func (t *Tracker) All() map[string]Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Stats, len(t.history))
	for title, samples := range t.history {
		if len(samples) > 0 {
			out[title] = summarize(samples)
		}
	}
	return out
}

// Titles lists the tracked node titles in sorted order.
func (t *Tracker) Titles() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	titles := make([]string, 0, len(t.history))
	for title := range t.history {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// Trim keeps only the most recent window samples per node.
func (t *Tracker) Trim(window int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for title, samples := range t.history {
		if window <= 0 {
			delete(t.history, title)
			continue
		}
		if len(samples) > window {
			kept := make([]time.Duration, window)
			copy(kept, samples[len(samples)-window:])
			t.history[title] = kept
		}
	}
}

// Reset drops all samples.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = make(map[string][]time.Duration)
}

func summarize(samples []time.Duration) Stats {
	s := Stats{
		Count: len(samples),
		Last:  samples[len(samples)-1],
		Min:   samples[0],
		Max:   samples[0],
	}
	var total time.Duration
	for _, d := range samples {
		total += d
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
	}
	s.Mean = total / time.Duration(len(samples))
	return s
}

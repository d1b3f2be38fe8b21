package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_RecordAndStats(t *testing.T) {
	tr := NewTracker(0)

	tr.Record("Gen", 10*time.Millisecond)
	tr.Record("Gen", 30*time.Millisecond)
	tr.Record("Gen", 20*time.Millisecond)

	stats, ok := tr.Stats("Gen")
	require.True(t, ok)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 20*time.Millisecond, stats.Last)
	assert.Equal(t, 20*time.Millisecond, stats.Mean)
	assert.Equal(t, 10*time.Millisecond, stats.Min)
	assert.Equal(t, 30*time.Millisecond, stats.Max)

	_, ok = tr.Stats("Missing")
	assert.False(t, ok)
}

func TestTracker_BoundedHistory(t *testing.T) {
	tr := NewTracker(3)
	for i := 1; i <= 5; i++ {
		tr.Record("Loop", time.Duration(i)*time.Second)
	}

	assert.Equal(t, []time.Duration{3 * time.Second, 4 * time.Second, 5 * time.Second}, tr.History("Loop"))
}

func TestTracker_Trim(t *testing.T) {
	tr := NewTracker(10)
	for i := 1; i <= 6; i++ {
		tr.Record("A", time.Duration(i))
	}
	tr.Record("B", 1)

	tr.Trim(2)

	assert.Equal(t, []time.Duration{5, 6}, tr.History("A"))
	assert.Equal(t, []time.Duration{1}, tr.History("B"))

	tr.Trim(0)
	assert.Empty(t, tr.Titles())
}

func TestTracker_HistoryIsACopy(t *testing.T) {
	tr := NewTracker(5)
	tr.Record("A", 1)

	h := tr.History("A")
	h[0] = 99

	assert.Equal(t, []time.Duration{1}, tr.History("A"))
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(5)
	tr.Record("A", 1)
	tr.Record("B", 2)
	assert.Equal(t, []string{"A", "B"}, tr.Titles())
	assert.Len(t, tr.All(), 2)

	tr.Reset()
	assert.Empty(t, tr.All())
}

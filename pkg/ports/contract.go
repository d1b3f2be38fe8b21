package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLogSinkContract runs a suite of tests to verify that a LogSink implementation
// delivers entries in order and without alteration. read returns what the sink holds.
func RunLogSinkContract(t *testing.T, sink LogSink, read func() []domain.LogEntry) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	t.Run("Ordered Delivery", func(t *testing.T) {
		sink.Log(ctx, domain.LogEntry{RunID: runID, Level: domain.LevelInfo, Message: "first"})
		sink.Log(ctx, domain.LogEntry{RunID: runID, Level: domain.LevelWarn, Node: "Gen", Message: "second"})

		got := read()
		require.GreaterOrEqual(t, len(got), 2)
		last := got[len(got)-2:]
		assert.Equal(t, "first", last[0].Message)
		assert.Equal(t, "second", last[1].Message)
		assert.Equal(t, "Gen", last[1].Node)
		assert.Equal(t, domain.LevelWarn, last[1].Level)
		assert.Equal(t, runID, last[1].RunID)
	})

	t.Run("Timestamp Preserved", func(t *testing.T) {
		ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		sink.Log(ctx, domain.LogEntry{Time: ts, Level: domain.LevelError, Message: "stamped"})

		got := read()
		require.NotEmpty(t, got)
		assert.True(t, ts.Equal(got[len(got)-1].Time), "expected %v, got %v", ts, got[len(got)-1].Time)
	})
}

package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMemorySink_Contract(t *testing.T) {
	sink := memory.NewSink()
	ports.RunLogSinkContract(t, sink, sink.Entries)
}

func TestMemorySink_Capacity(t *testing.T) {
	sink := memory.NewSinkWithCapacity(2)
	ctx := context.Background()
	for _, msg := range []string{"a", "b", "c"} {
		sink.Log(ctx, domain.LogEntry{Message: msg})
	}

	entries := sink.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Message)
	assert.Equal(t, "c", entries[1].Message)
}

func TestMemorySink_Filters(t *testing.T) {
	sink := memory.NewSink()
	ctx := context.Background()
	sink.Log(ctx, domain.LogEntry{RunID: "r1", Node: "Gen", Message: "x"})
	sink.Log(ctx, domain.LogEntry{RunID: "r2", Node: "Gen", Message: "y"})
	sink.Log(ctx, domain.LogEntry{RunID: "r2", Node: "Show", Message: "z"})

	assert.Len(t, sink.ByNode("Gen"), 2)
	assert.Len(t, sink.ByRun("r2"), 2)

	sink.Clear()
	assert.Empty(t, sink.Entries())
}

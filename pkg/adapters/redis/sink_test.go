package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSink(t *testing.T, opts ...redis.Option) (*redis.Sink, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	sink := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { sink.Close() })
	return sink, mr
}

func TestRedisSink_Contract(t *testing.T) {
	sink, _ := newSink(t)
	ports.RunLogSinkContract(t, sink, func() []domain.LogEntry {
		entries, err := sink.Tail(context.Background(), 100)
		require.NoError(t, err)
		return entries
	})
}

func TestRedisSink_MaxLen(t *testing.T) {
	sink, mr := newSink(t, redis.WithStream("runs"), redis.WithMaxLen(2))
	ctx := context.Background()
	for _, msg := range []string{"a", "b", "c"} {
		sink.Log(ctx, domain.LogEntry{Level: domain.LevelInfo, Message: msg})
	}

	entries, err := sink.Tail(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Message)
	assert.Equal(t, "c", entries[1].Message)
	assert.True(t, mr.Exists("runs"))
}

func TestRedisSink_Subscribe(t *testing.T) {
	sink, _ := newSink(t, redis.WithChannel("live"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	live, err := sink.Subscribe(ctx)
	require.NoError(t, err)

	sink.Log(ctx, domain.LogEntry{RunID: "r1", Level: domain.LevelInfo, Node: "Gen", Message: "hello"})

	select {
	case e := <-live:
		assert.Equal(t, "hello", e.Message)
		assert.Equal(t, "Gen", e.Node)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for live entry")
	}
}

func TestRedisSink_SubscribeWithoutChannel(t *testing.T) {
	sink, _ := newSink(t, redis.WithChannel(""))
	_, err := sink.Subscribe(context.Background())
	assert.Error(t, err)
}

func TestRedisSink_UnreachableServerDoesNotPanic(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	sink := redis.New(addr, "", 0)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NotPanics(t, func() {
		sink.Log(ctx, domain.LogEntry{Message: "lost"})
	})
}

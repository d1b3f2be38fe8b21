package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func nodeEvent(typ domain.EventType, title string) *domain.NodeEvent {
	return &domain.NodeEvent{
		EventBase: domain.EventBase{Type: typ, RunID: "r1"},
		NodeID:    title,
		Title:     title,
		Duration:  5 * time.Millisecond,
	}
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNodeEnter(ctx, nodeEvent(domain.EventNodeEnter, "Gen"))
	hooks.OnNodeEnter(ctx, nodeEvent(domain.EventNodeEnter, "Gen"))
	hooks.OnNodeLeave(ctx, nodeEvent(domain.EventNodeLeave, "Gen"))
	hooks.OnNodeSkip(ctx, nodeEvent(domain.EventNodeSkip, "Note"))
	hooks.OnNodeError(ctx, nodeEvent(domain.EventNodeError, "Bad"))
	hooks.OnRunEnd(ctx, &domain.RunEvent{Status: domain.RunCompleted, Report: &domain.Report{Duration: time.Second}})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("Gen")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeSkips.WithLabelValues("Note")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeFailures.WithLabelValues("Bad")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("completed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.NodeDuration))
}

func TestNewMetrics_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() { observability.NewMetrics(nil) })
}

func TestCombine(t *testing.T) {
	var order []string
	first := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { order = append(order, "first") },
	}
	second := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { order = append(order, "second") },
		OnRunStart:  func(context.Context, *domain.RunEvent) { order = append(order, "run") },
	}

	hooks := observability.Combine(first, domain.LifecycleHooks{}, second)
	hooks.OnNodeEnter(context.Background(), nodeEvent(domain.EventNodeEnter, "A"))
	hooks.OnRunStart(context.Background(), &domain.RunEvent{})

	assert.Equal(t, []string{"first", "second", "run"}, order)
	assert.Nil(t, hooks.OnNodeSkip)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LoggingHooks(logger)

	e := nodeEvent(domain.EventNodeError, "Bad")
	e.Err = errors.New("exploded")
	hooks.OnNodeError(context.Background(), e)

	assert.Contains(t, buf.String(), "node_error")
	assert.Contains(t, buf.String(), "exploded")
}

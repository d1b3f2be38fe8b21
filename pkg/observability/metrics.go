package observability

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records run and node activity as Prometheus collectors.
type Metrics struct {
	Runs         *prometheus.CounterVec
	NodeVisits   *prometheus.CounterVec
	NodeFailures *prometheus.CounterVec
	NodeSkips    *prometheus.CounterVec
	NodeDuration *prometheus.HistogramVec
	RunDuration  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_runs_total",
				Help: "Total number of graph runs by final status",
			},
			[]string{"status"},
		),
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_node_visits_total",
				Help: "Total number of node visits",
			},
			[]string{"node"},
		),
		NodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_node_failures_total",
				Help: "Total number of failed node calls",
			},
			[]string{"node"},
		),
		NodeSkips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_node_skips_total",
				Help: "Total number of nodes skipped for lacking a function",
			},
			[]string{"node"},
		),
		NodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weft_node_duration_seconds",
				Help:    "Duration of node calls",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"node"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "weft_run_duration_seconds",
				Help: "Duration of whole graph runs",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.NodeVisits, m.NodeFailures, m.NodeSkips, m.NodeDuration, m.RunDuration)
	}
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			m.Runs.WithLabelValues(string(e.Status)).Inc()
			if e.Report != nil {
				m.RunDuration.Observe(e.Report.Duration.Seconds())
			}
		},
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.Title).Inc()
		},
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			if !e.Reroute {
				m.NodeDuration.WithLabelValues(e.Title).Observe(e.Duration.Seconds())
			}
		},
		OnNodeSkip: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeSkips.WithLabelValues(e.Title).Inc()
		},
		OnNodeError: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeFailures.WithLabelValues(e.Title).Inc()
			m.NodeDuration.WithLabelValues(e.Title).Observe(e.Duration.Seconds())
		},
	}
}

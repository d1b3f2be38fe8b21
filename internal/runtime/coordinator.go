package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/google/uuid"
)

// DefaultStepFactor multiplied by the node count gives a run's visit budget.
const DefaultStepFactor = 10

// Coordinator walks a graph and calls each reached node through a NodeExecutor.
type Coordinator struct {
	executor ports.NodeExecutor
	sink     ports.LogSink
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	resolver ports.EnvResolver
	factor   int
	newID    func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogSink sets where run narration goes.
func WithLogSink(sink ports.LogSink) Option {
	return func(c *Coordinator) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Coordinator) {
		c.hooks = hooks
	}
}

// WithEnvResolver sets the callback reporting the runtime environment at run start.
func WithEnvResolver(r ports.EnvResolver) Option {
	return func(c *Coordinator) {
		c.resolver = r
	}
}

// WithStepFactor sets the visit budget multiplier. Values below 1 keep the default.
func WithStepFactor(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.factor = n
		}
	}
}

// WithRunIDGenerator replaces the run ID source.
func WithRunIDGenerator(fn func() string) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewCoordinator creates a coordinator that calls nodes through executor.
func NewCoordinator(executor ports.NodeExecutor, opts ...Option) *Coordinator {
	c := &Coordinator{
		executor: executor,
		sink:     ports.LogSinkFunc(func(context.Context, domain.LogEntry) {}),
		logger:   logging.NewNop(),
		factor:   DefaultStepFactor,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs g once. Node failures are narrated and listed in the report; the
// returned error is reserved for domain.ErrNoEntryPoint, domain.ErrStepBudgetExceeded
// and context cancellation. The report is returned in every case.
func (c *Coordinator) Execute(ctx context.Context, g *domain.Graph) (*domain.Report, error) {
	r := &run{
		Coordinator: c,
		report: &domain.Report{
			RunID:  c.newID(),
			Status: domain.RunCompleted,
			Values: domain.NewPinValues(),
		},
		budget: c.factor * len(g.Nodes),
	}
	start := time.Now()

	c.emitRunStart(ctx, r.report.RunID, g)
	c.logger.DebugContext(ctx, "run starting", "run_id", r.report.RunID, "graph", g.Name, "nodes", len(g.Nodes))
	r.resolveEnv(ctx)

	entries := EntryPoints(g)
	if len(entries) == 0 {
		r.report.Status = domain.RunNoEntryPoint
		r.log(ctx, domain.LevelError, "", domain.ErrNoEntryPoint.Error())
		r.report.Duration = time.Since(start)
		c.emitRunEnd(ctx, g, r.report)
		return r.report, domain.ErrNoEntryPoint
	}
	r.log(ctx, domain.LevelInfo, "", fmt.Sprintf("Run started: %d nodes, %d entry points", len(g.Nodes), len(entries)))

	for _, n := range entries {
		if r.halted() {
			break
		}
		r.visit(ctx, n)
	}

	var err error
	switch {
	case r.aborted:
		r.report.Status = domain.RunAborted
		err = fmt.Errorf("%w: %d visits allowed for %d nodes", domain.ErrStepBudgetExceeded, r.budget, len(g.Nodes))
	case r.canceled != nil:
		r.report.Status = domain.RunCanceled
		err = r.canceled
		r.log(ctx, domain.LevelWarn, "", "Run canceled: "+err.Error())
	default:
		r.log(ctx, domain.LevelInfo, "", fmt.Sprintf("Run finished: %d calls, %d failures", r.report.Calls, len(r.report.Failures)))
	}

	r.report.Duration = time.Since(start)
	c.emitRunEnd(ctx, g, r.report)
	return r.report, err
}

// EntryPoints returns the nodes a run starts from, in graph order: nodes with no
// connected execution input, and reroutes whose data input is unconnected.
func EntryPoints(g *domain.Graph) []*domain.Node {
	var out []*domain.Node
	for _, n := range g.Nodes {
		if isEntryPoint(n) {
			out = append(out, n)
		}
	}
	return out
}

func isEntryPoint(n *domain.Node) bool {
	if n.Reroute {
		in := n.RerouteIn()
		return in == nil || !in.Connected()
	}
	for _, p := range n.ExecInputs() {
		if p.Connected() {
			return false
		}
	}
	return true
}

func (c *Coordinator) emitRunStart(ctx context.Context, runID string, g *domain.Graph) {
	if c.hooks.OnRunStart == nil {
		return
	}
	c.hooks.OnRunStart(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunStart, RunID: runID},
		Graph:     g.Name,
	})
}

func (c *Coordinator) emitRunEnd(ctx context.Context, g *domain.Graph, report *domain.Report) {
	if c.hooks.OnRunEnd == nil {
		return
	}
	c.hooks.OnRunEnd(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunEnd, RunID: report.RunID},
		Graph:     g.Name,
		Status:    report.Status,
		Report:    report,
	})
}

func (c *Coordinator) emitNode(ctx context.Context, hook func(context.Context, *domain.NodeEvent), typ domain.EventType, runID string, n *domain.Node, d time.Duration, err error) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: runID},
		NodeID:    n.ID,
		Title:     n.Label(),
		Reroute:   n.Reroute,
		Duration:  d,
		Err:       err,
	})
}

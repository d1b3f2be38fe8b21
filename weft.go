package weft

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/internal/runtime"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/host"
	"github.com/aretw0/weft/pkg/perf"
	"github.com/aretw0/weft/pkg/ports"
)

// Engine is the high-level entry point for the weft library.
// It owns one code execution host and runs graphs through it, one call at a time.
type Engine struct {
	mu          sync.Mutex
	host        *host.Host
	executor    ports.NodeExecutor
	coordinator *runtime.Coordinator
	tracker     *perf.Tracker

	logger   *slog.Logger
	sink     ports.LogSink
	hooks    domain.LifecycleHooks
	resolver ports.EnvResolver
	factor   int
	hostOpts []host.Option
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLogSink sets where run narration goes.
func WithLogSink(sink ports.LogSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithExecutor replaces the embedded host with another NodeExecutor, such as the
// process runner. Namespace and object operations then have nothing to act on.
func WithExecutor(x ports.NodeExecutor) Option {
	return func(e *Engine) {
		e.executor = x
	}
}

// WithEnvResolver sets the callback that reports the runtime environment at run start.
func WithEnvResolver(r ports.EnvResolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithStepFactor sets the visit budget multiplier (default 10 visits per node).
func WithStepFactor(n int) Option {
	return func(e *Engine) {
		e.factor = n
	}
}

// WithTracker shares a performance tracker with the engine.
func WithTracker(t *perf.Tracker) Option {
	return func(e *Engine) {
		e.tracker = t
	}
}

// WithHostOptions passes options to the embedded host.
func WithHostOptions(opts ...host.Option) Option {
	return func(e *Engine) {
		e.hostOpts = append(e.hostOpts, opts...)
	}
}

// WithName labels the engine in logs.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes a weft Engine with an embedded host unless WithExecutor is given.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("engine", eng.Name)
	}
	if eng.tracker == nil {
		eng.tracker = perf.NewTracker(perf.DefaultHistorySize)
	}

	if eng.executor == nil {
		hostOpts := append([]host.Option{
			host.WithLogger(eng.logger),
			host.WithTracker(eng.tracker),
		}, eng.hostOpts...)
		h, err := host.New(hostOpts...)
		if err != nil {
			return nil, err
		}
		eng.host = h
		eng.executor = h
	}

	eng.coordinator = runtime.NewCoordinator(eng.executor,
		runtime.WithLogger(eng.logger),
		runtime.WithLogSink(eng.sink),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithEnvResolver(eng.resolver),
		runtime.WithStepFactor(eng.factor),
	)
	return eng, nil
}

// Close releases the embedded host.
func (e *Engine) Close() {
	if e.host != nil {
		e.host.Close()
	}
}

// Run walks g once. Node failures are narrated and listed in the report.
func (e *Engine) Run(ctx context.Context, g *domain.Graph) (*domain.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coordinator.Execute(ctx, g)
}

// ExecuteNode calls one node outside of a graph walk.
func (e *Engine) ExecuteNode(ctx context.Context, node *domain.Node, args map[string]any) (*domain.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executor.ExecuteNode(ctx, node, args)
}

// StoreObject keeps value under key for later nodes. It reports false when the
// engine has no embedded host.
func (e *Engine) StoreObject(key string, value any) bool {
	if e.host == nil {
		return false
	}
	e.host.StoreObject(key, value)
	return true
}

// GetObject returns the object stored under key.
func (e *Engine) GetObject(key string) (any, bool) {
	if e.host == nil {
		return nil, false
	}
	return e.host.GetObject(key)
}

// ObjectKeys lists the object store keys.
func (e *Engine) ObjectKeys() []string {
	if e.host == nil {
		return nil
	}
	return e.host.ObjectKeys()
}

// ResetNamespace drops every definition, stored object and timing sample.
func (e *Engine) ResetNamespace() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.host != nil {
		e.host.ResetNamespace()
		return
	}
	e.tracker.Reset()
}

// CleanupMemory runs a reclamation pass and returns the number of objects collected.
func (e *Engine) CleanupMemory() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.host != nil {
		return e.host.CleanupMemory()
	}
	e.tracker.Trim(host.DefaultHistoryWindow)
	return 0
}

// Namespace returns the persistent namespace, or nil without an embedded host.
func (e *Engine) Namespace() *host.Namespace {
	if e.host == nil {
		return nil
	}
	return e.host.Namespace()
}

// NamespaceNames lists the names bound in the persistent namespace.
func (e *Engine) NamespaceNames() []string {
	if e.host == nil {
		return nil
	}
	return e.host.Names()
}

// Performance returns timing statistics per node title.
func (e *Engine) Performance() map[string]perf.Stats {
	return e.tracker.All()
}

// Tracker returns the performance tracker.
func (e *Engine) Tracker() *perf.Tracker {
	return e.tracker
}

var _ ports.Engine = (*Engine)(nil)

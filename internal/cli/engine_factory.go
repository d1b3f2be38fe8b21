package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/adapters/process"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/config"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/host"
	"github.com/aretw0/weft/pkg/logsink"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/aretw0/weft/pkg/perf"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// EngineOptions carries what the caller adds on top of the configuration.
type EngineOptions struct {
	// Narration receives run log lines in the configured format. Nil discards them.
	Narration io.Writer
	// Sinks are attached next to the narration sink.
	Sinks []ports.LogSink
	// Registry, when set, receives the engine metrics.
	Registry prometheus.Registerer
	// Functions are exposed to node code. Nil selects the built-in set.
	Functions *registry.Registry
	Debug     bool
}

// Engine bundles an engine with the resources opened for it.
type Engine struct {
	*weft.Engine
	Metrics *observability.Metrics
	redis   *redis.Sink
}

// Close releases the engine and its sinks.
func (e *Engine) Close() {
	if e.Engine != nil {
		e.Engine.Close()
	}
	if e.redis != nil {
		_ = e.redis.Close()
	}
}

// createEngine initializes a weft engine following cfg.
func createEngine(cfg *config.Config, opts EngineOptions, logger *slog.Logger) (*Engine, error) {
	tracker := perf.NewTracker(cfg.Engine.HistorySize)
	engineOpts := []weft.Option{
		weft.WithLogger(logger),
		weft.WithTracker(tracker),
		weft.WithStepFactor(cfg.Engine.StepFactor),
	}
	out := &Engine{}

	// 1. Narration
	sinks := append(logsink.Multi{}, opts.Sinks...)
	if opts.Narration != nil {
		switch cfg.Log.Narration {
		case "text":
			sinks = append(sinks, logsink.NewText(opts.Narration))
		case "json":
			sinks = append(sinks, logsink.NewJSON(opts.Narration))
		}
	}
	if cfg.Redis.Address != "" {
		out.redis = redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithStream(cfg.Redis.Stream),
			redis.WithChannel(cfg.Redis.Channel),
			redis.WithMaxLen(cfg.Redis.MaxLen),
			redis.WithLogger(logger),
		)
		sinks = append(sinks, out.redis)
	}
	if len(sinks) > 0 {
		engineOpts = append(engineOpts, weft.WithLogSink(sinks))
	}

	// 2. Hooks
	var hooks []domain.LifecycleHooks
	if opts.Debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}
	if opts.Registry != nil {
		out.Metrics = observability.NewMetrics(opts.Registry)
		hooks = append(hooks, out.Metrics.Hooks())
	}
	if len(hooks) > 0 {
		engineOpts = append(engineOpts, weft.WithLifecycleHooks(observability.Combine(hooks...)))
	}

	// 3. Executor
	switch cfg.Executor.Kind {
	case config.ExecutorProcess:
		runner, it, err := createProcessRunner(cfg, tracker)
		if err != nil {
			out.Close()
			return nil, err
		}
		engineOpts = append(engineOpts,
			weft.WithExecutor(runner),
			weft.WithEnvResolver(func() (string, error) { return exec.LookPath(it.Command) }),
		)
	default:
		funcs := opts.Functions
		if funcs == nil {
			funcs = builtinFunctions()
		}
		engineOpts = append(engineOpts,
			weft.WithHostOptions(
				host.WithDeviceModules(cfg.Engine.DeviceModules...),
				host.WithHistoryWindow(cfg.Engine.HistoryWindow),
				host.WithFunctions(funcs),
			),
			weft.WithEnvResolver(func() (string, error) { return "embedded Lua 5.1 (gopher-lua)", nil }),
		)
	}

	engine, err := weft.New(engineOpts...)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	out.Engine = engine
	return out, nil
}

func createProcessRunner(cfg *config.Config, tracker *perf.Tracker) (*process.Runner, process.InterpreterConfig, error) {
	registry, err := process.LoadInterpreters(cfg.Executor.Interpreters)
	if err != nil {
		return nil, process.InterpreterConfig{}, err
	}
	if cfg.Executor.Interpreter == "" {
		return nil, process.InterpreterConfig{}, errors.New("executor.interpreter is required for the process executor")
	}
	it, ok := registry[cfg.Executor.Interpreter]
	if !ok {
		return nil, process.InterpreterConfig{}, fmt.Errorf("interpreter %q not found in %s", cfg.Executor.Interpreter, cfg.Executor.Interpreters)
	}
	runner := process.NewRunner(
		process.WithRegistry(registry),
		process.WithInterpreter(cfg.Executor.Interpreter),
		process.WithBaseDir(cfg.Executor.WorkDir),
		process.WithTracker(tracker),
	)
	return runner, it, nil
}

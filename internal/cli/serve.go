package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/weft"
	weftHttp "github.com/aretw0/weft/pkg/adapters/http"
	"github.com/aretw0/weft/pkg/adapters/file"
	"github.com/aretw0/weft/pkg/adapters/mcp"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServeOptions configures the interactive HTTP server.
type ServeOptions struct {
	ConfigPath string
	Port       int
	Debug      bool
}

// Serve runs the HTTP server until SIGINT or SIGTERM.
func Serve(opts ServeOptions) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}
	logger := createLogger(cfg, opts.Debug)

	streams := weftHttp.NewStreamManager()
	engOpts := EngineOptions{
		Sinks: []ports.LogSink{streams},
		Debug: opts.Debug,
	}
	var handlerOpts []weftHttp.Option
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		engOpts.Registry = reg
		handlerOpts = append(handlerOpts, weftHttp.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	engine, err := createEngine(cfg, engOpts, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	handlerOpts = append(handlerOpts,
		weftHttp.WithGraphLoader(file.New(cfg.Graphs)),
		weftHttp.WithStreams(streams),
		weftHttp.WithVersion(weft.Version),
	)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           weftHttp.NewHandler(engine, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(os.Stdout, "Starting weft server on %s", srv.Addr)
		printSystemMessage(os.Stdout, "Serving graphs from: %s", cfg.Graphs)
		serverErrors <- srv.ListenAndServe()
	}()

	ctx := NewSignalContext(context.Background())
	defer ctx.Cancel()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		printSystemMessage(os.Stdout, "Start shutdown... Signal: %v", ctx.Signal())

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		printSystemMessage(os.Stdout, "weft server stopped gracefully")
		return nil
	}
}

// MCPOptions configures the MCP server.
type MCPOptions struct {
	ConfigPath string
	Transport  string
	Port       int
	Debug      bool
}

// ServeMCP exposes the engine as MCP tools over stdio or SSE.
func ServeMCP(opts MCPOptions) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := createLogger(cfg, opts.Debug)

	// Stdout belongs to JSON-RPC on the stdio transport, so narration is only kept for SSE.
	engOpts := EngineOptions{Debug: opts.Debug}
	if opts.Transport == "sse" {
		engOpts.Narration = os.Stderr
	}
	engine, err := createEngine(cfg, engOpts, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	srv := mcp.NewServer(engine, file.New(cfg.Graphs), weft.Version)

	switch opts.Transport {
	case "stdio":
		logger.Info("Starting weft MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		ctx := NewSignalContext(context.Background())
		defer ctx.Cancel()
		logger.Info("Starting weft MCP Server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}

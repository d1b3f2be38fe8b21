package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/internal/validator"
	"github.com/aretw0/weft/pkg/adapters/file"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/host"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	ConfigPath string
	Graph      string
	Headless   bool
	JSON       bool
	Debug      bool
	Watch      bool
	Mermaid    bool
	Perf       bool
	Out        io.Writer
}

// RunReport is the JSON document written by `weft run --json`.
type RunReport struct {
	Graph      string               `json:"graph"`
	RunID      string               `json:"run_id"`
	Status     domain.RunStatus     `json:"status"`
	Values     map[string]any       `json:"values"`
	Visits     int                  `json:"visits"`
	Calls      int                  `json:"calls"`
	Trace      []string             `json:"trace,omitempty"`
	Skipped    []string             `json:"skipped,omitempty"`
	Failures   []domain.NodeFailure `json:"failures,omitempty"`
	DurationMs float64              `json:"duration_ms"`
	Error      string               `json:"error,omitempty"`
}

// Execute handles the 'run' command logic, dispatching to a single run or watch mode.
func Execute(opts RunOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Watch && (opts.Headless || opts.JSON) {
		return fmt.Errorf("--watch cannot be combined with --headless or --json")
	}

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := createLogger(cfg, opts.Debug)

	loader := file.New(cfg.Graphs)
	g, err := loader.Load(opts.Graph)
	if err != nil {
		return err
	}
	if err := validator.ValidateGraph(g); err != nil {
		return fmt.Errorf("invalid graph %s:\n%w", g.Name, err)
	}

	engOpts := EngineOptions{Debug: opts.Debug}
	if !opts.Headless {
		engOpts.Narration = opts.Out
		if opts.JSON {
			// Narration would interleave with the report document.
			engOpts.Narration = nil
		}
	}
	engine, err := createEngine(cfg, engOpts, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := NewSignalContext(context.Background())
	defer ctx.Cancel()

	if opts.Watch {
		tui.PrintBanner(opts.Out)
		return watch(ctx, engine, loader, opts, logger)
	}

	report, runErr := runOnce(ctx, engine, g, opts)
	if isInterrupted(runErr) {
		printSystemMessage(opts.Out, "Interrupted (%v).", ctx.Signal())
		return nil
	}
	if runErr != nil {
		return runErr
	}
	if report.Failed() {
		return ErrRunFailed
	}
	return nil
}

// runOnce runs g and writes the outcome in the format selected by opts.
func runOnce(ctx *SignalContext, engine *Engine, g *domain.Graph, opts RunOptions) (*domain.Report, error) {
	if opts.JSON {
		report, runErr := engine.Run(ctx, g)
		if report == nil {
			return nil, runErr
		}
		enc := json.NewEncoder(opts.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewRunReport(g, report, runErr)); err != nil {
			return report, err
		}
		return report, runErr
	}

	r := weft.NewRunner()
	r.Output = opts.Out
	r.Headless = opts.Headless
	r.Renderer = tui.NewRenderer()

	report, runErr := r.Run(ctx, engine.Engine, g)
	if report != nil && opts.Perf && !opts.Headless {
		table := "### Timings\n\n" + tui.PerfMarkdown(engine.Performance())
		if rendered, err := r.Renderer(table); err == nil {
			table = rendered
		}
		fmt.Fprint(opts.Out, table)
	}
	if report != nil && opts.Mermaid && !opts.Headless {
		fmt.Fprintf(opts.Out, "\n```mermaid\n%s```\n", graph.GenerateMermaid(g, graph.OverlayFromReport(report)))
	}
	return report, runErr
}

// NewRunReport converts a report into its JSON document.
func NewRunReport(g *domain.Graph, report *domain.Report, runErr error) RunReport {
	out := RunReport{
		Graph:      g.Name,
		RunID:      report.RunID,
		Status:     report.Status,
		Values:     map[string]any{},
		Visits:     report.Visits,
		Calls:      report.Calls,
		Trace:      report.Trace,
		Skipped:    report.Skipped,
		Failures:   report.Failures,
		DurationMs: float64(report.Duration) / float64(time.Millisecond),
	}
	if report.Values != nil {
		for k, v := range report.Values.Snapshot() {
			out.Values[k] = host.Export(v)
		}
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	return out
}

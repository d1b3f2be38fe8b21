package weft

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/host"
)

// Runner runs a graph in batch mode and writes a summary of the outcome.
// Narration goes to the engine's log sink; the Runner only reports the result.
type Runner struct {
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer transforms the markdown summary before it is written.
// This allows terminal rendering without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes g once and writes the summary unless Headless is set.
// The report is returned together with the run error, if any.
func (r *Runner) Run(ctx context.Context, engine *Engine, g *domain.Graph) (*domain.Report, error) {
	if r.Output == nil && !r.Headless {
		return nil, fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	report, runErr := engine.Run(ctx, g)
	if r.Headless || report == nil {
		return report, runErr
	}

	out := Summary(g, report)
	if r.Renderer != nil {
		if rendered, err := r.Renderer(out); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimRight(out, "\n"))
	return report, runErr
}

// Summary renders a run report as markdown.
func Summary(g *domain.Graph, report *domain.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Run %s\n\n", g.Name)
	fmt.Fprintf(&sb, "- **Status**: %s\n", report.Status)
	fmt.Fprintf(&sb, "- **Run ID**: `%s`\n", report.RunID)
	fmt.Fprintf(&sb, "- **Visits**: %d, **Calls**: %d\n", report.Visits, report.Calls)
	fmt.Fprintf(&sb, "- **Duration**: %s\n", report.Duration)

	if report.Values != nil && report.Values.Len() > 0 {
		snap := report.Values.Snapshot()
		keys := make([]string, 0, len(snap))
		for k := range snap {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\n### Values\n\n| Pin | Value |\n|---|---|\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "| %s | `%v` |\n", k, host.Export(snap[k]))
		}
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(&sb, "\n### Skipped\n\n%s\n", strings.Join(report.Skipped, ", "))
	}

	if len(report.Failures) > 0 {
		sb.WriteString("\n### Failures\n\n")
		for _, f := range report.Failures {
			fmt.Fprintf(&sb, "- **%s**: %s\n", f.Title, strings.ReplaceAll(f.Error, "\n", " "))
		}
	}
	return sb.String()
}

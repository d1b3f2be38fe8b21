package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/internal/validator"
	"github.com/aretw0/weft/pkg/adapters/file"
)

// Validate loads the named graphs, or every graph under the configured directory,
// and reports structural problems. Unreachable nodes are warnings.
func Validate(configPath string, names []string, out io.Writer) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	loader := file.New(cfg.Graphs)
	if len(names) == 0 {
		if names, err = loader.Names(); err != nil {
			return err
		}
	}

	failed := 0
	for _, name := range names {
		g, err := loader.Load(name)
		if err == nil {
			err = validator.ValidateGraph(g)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s\n%v\n", name, err)
			continue
		}
		fmt.Fprintf(out, "✓ %s (%d nodes)\n", name, len(g.Nodes))
		for _, id := range validator.Unreachable(g) {
			fmt.Fprintf(out, "  warning: node %q is never reached\n", id)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d graphs invalid", failed, len(names))
	}
	return nil
}

// Graph prints the Mermaid flowchart of a graph.
func Graph(configPath, name string, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	g, err := file.New(cfg.Graphs).Load(name)
	if err != nil {
		return err
	}
	fmt.Fprint(out, graph.GenerateMermaid(g, nil))
	return nil
}

package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/perf"
)

// Engine is the surface driven by interactive adapters (HTTP, MCP).
type Engine interface {
	// Run walks the graph once. Node failures are reported, not returned.
	Run(ctx context.Context, g *domain.Graph) (*domain.Report, error)

	// ExecuteNode calls a single node outside of a graph walk.
	ExecuteNode(ctx context.Context, node *domain.Node, args map[string]any) (*domain.Result, error)

	// ResetNamespace drops every definition, stored object and timing sample.
	ResetNamespace()

	// CleanupMemory runs a reclamation pass and returns the number of objects collected.
	CleanupMemory() int

	// ObjectKeys lists the keys held by the object store.
	ObjectKeys() []string

	// NamespaceNames lists the names currently bound in the persistent namespace.
	NamespaceNames() []string

	// Performance returns timing statistics per node title.
	Performance() map[string]perf.Stats
}

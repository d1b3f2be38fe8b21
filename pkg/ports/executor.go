package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// NodeExecutor evaluates a node's source fragment and invokes its entry function.
// Implementations fail with domain.ErrNoFunction when node.Function is empty.
type NodeExecutor interface {
	ExecuteNode(ctx context.Context, node *domain.Node, args map[string]any) (*domain.Result, error)
}

// EnvResolver reports the runtime environment a run will use (e.g. a module search path).
// It is consulted around a run for readiness only; it never launches anything.
type EnvResolver func() (string, error)

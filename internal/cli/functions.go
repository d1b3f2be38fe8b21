package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/weft/pkg/registry"
)

// builtinFunctions are Go functions the CLI exposes to node code.
func builtinFunctions() *registry.Registry {
	r := registry.NewRegistry()
	r.Register("getenv", func(_ context.Context, args map[string]any) (any, error) {
		name, ok := args["name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("getenv: name must be a non-empty string")
		}
		v, ok := os.LookupEnv(name)
		if !ok {
			return args["default"], nil
		}
		return v, nil
	})
	r.Register("now", func(context.Context, map[string]any) (any, error) {
		return float64(time.Now().UnixMilli()) / 1000, nil
	})
	return r
}

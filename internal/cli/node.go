package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/host"
)

// NodeOptions describes a single node call from the command line.
type NodeOptions struct {
	ConfigPath string
	Title      string
	Code       string
	File       string
	Function   string
	Args       string // Raw JSON object
	JSON       bool
	Debug      bool
	Out        io.Writer
}

// NodeOutput is the JSON document written by `weft node --json`.
type NodeOutput struct {
	Value      any     `json:"value"`
	Output     string  `json:"output,omitempty"`
	DurationMs float64 `json:"duration_ms"`
}

// ExecuteNode evaluates one fragment and calls its entry function once.
func ExecuteNode(opts NodeOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	code := opts.Code
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return fmt.Errorf("failed to read code: %w", err)
		}
		code = string(data)
	}

	var args map[string]any
	if opts.Args != "" {
		if err := json.Unmarshal([]byte(opts.Args), &args); err != nil {
			return fmt.Errorf("error parsing --args JSON: %w", err)
		}
	}

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	engine, err := createEngine(cfg, EngineOptions{Debug: opts.Debug}, createLogger(cfg, opts.Debug))
	if err != nil {
		return err
	}
	defer engine.Close()

	title := opts.Title
	if title == "" {
		title = opts.Function
	}
	node := domain.NewNode(title, title)
	node.Code = code
	node.Function = opts.Function

	res, err := engine.ExecuteNode(context.Background(), node, args)
	if err != nil {
		return err
	}

	if opts.JSON {
		return json.NewEncoder(opts.Out).Encode(NodeOutput{
			Value:      host.Export(res.Value),
			Output:     res.Captured(),
			DurationMs: float64(res.Duration.Microseconds()) / 1000,
		})
	}
	if text := res.Captured(); text != "" {
		fmt.Fprintln(opts.Out, text)
	}
	fmt.Fprintf(opts.Out, "=> %v (%s)\n", host.Export(res.Value), res.Duration)
	return nil
}

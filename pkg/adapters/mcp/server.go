package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/host"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RunGraphArgs selects the graph to run.
type RunGraphArgs struct {
	Graph string `json:"graph"`
}

// RunResult is the structured outcome of run_graph.
type RunResult struct {
	RunID      string               `json:"run_id" jsonschema_description:"Identifier carried by every log line of the run"`
	Status     domain.RunStatus     `json:"status" jsonschema_description:"completed, aborted, canceled or no_entry_point"`
	Values     map[string]any       `json:"values" jsonschema_description:"Values recorded on data outputs, keyed Node.pin"`
	Calls      int                  `json:"calls" jsonschema_description:"Number of node calls attempted"`
	Skipped    []string             `json:"skipped,omitempty" jsonschema_description:"Nodes skipped for lack of a function"`
	Failures   []domain.NodeFailure `json:"failures,omitempty" jsonschema_description:"Nodes whose call failed"`
	DurationMs float64              `json:"duration_ms"`
	Error      string               `json:"error,omitempty"`
}

// ExecuteNodeArgs describes a node called outside of a graph walk.
type ExecuteNodeArgs struct {
	Title    string         `json:"title"`
	Code     string         `json:"code"`
	Function string         `json:"function"`
	Args     map[string]any `json:"args"`
}

// NodeResult is the structured outcome of execute_node.
type NodeResult struct {
	Value      any     `json:"value" jsonschema_description:"The entry function's return value"`
	Output     string  `json:"output,omitempty" jsonschema_description:"Text printed during the call"`
	DurationMs float64 `json:"duration_ms"`
}

// Server wraps a weft engine and exposes it as an MCP server.
type Server struct {
	engine    ports.Engine
	loader    ports.GraphLoader
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. loader may be nil, which disables run_graph.
func NewServer(engine ports.Engine, loader ports.GraphLoader, version string) *Server {
	s := &Server{
		engine:    engine,
		loader:    loader,
		mcpServer: server.NewMCPServer("weft-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	if s.loader != nil {
		runTool := mcp.NewTool("run_graph",
			mcp.WithDescription("Run a graph once from its entry points and return the recorded pin values."),
			mcp.WithString("graph", mcp.Required(), mcp.Description("Graph name or path")),
			mcp.WithOutputSchema[RunResult](),
		)
		s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.HandleRunGraph))
	}

	nodeTool := mcp.NewTool("execute_node",
		mcp.WithDescription("Evaluate a Lua fragment in the shared namespace and call its entry function."),
		mcp.WithString("function", mcp.Required(), mcp.Description("Entry function name")),
		mcp.WithString("code", mcp.Description("Lua fragment evaluated before the call")),
		mcp.WithString("title", mcp.Description("Node title used for timing and messages")),
		mcp.WithObject("args", mcp.Description("Named arguments")),
		mcp.WithOutputSchema[NodeResult](),
	)
	s.mcpServer.AddTool(nodeTool, mcp.NewStructuredToolHandler(s.HandleExecuteNode))

	s.mcpServer.AddTool(mcp.NewTool("reset_namespace",
		mcp.WithDescription("Discard every definition, stored object and timing sample."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.engine.ResetNamespace()
		return mcp.NewToolResultText("namespace reset"), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("cleanup_memory",
		mcp.WithDescription("Run a garbage collection pass and trim timing history."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(fmt.Sprintf("collected %d objects", s.engine.CleanupMemory())), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("perf_report",
		mcp.WithDescription("Per-node call timing statistics."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(s.PerfReport()), nil
	})
}

// HandleRunGraph runs the named graph.
func (s *Server) HandleRunGraph(ctx context.Context, request mcp.CallToolRequest, args RunGraphArgs) (RunResult, error) {
	if args.Graph == "" {
		return RunResult{}, fmt.Errorf("graph is required")
	}
	g, err := s.loader.Load(args.Graph)
	if err != nil {
		return RunResult{}, fmt.Errorf("load graph: %w", err)
	}

	report, runErr := s.engine.Run(ctx, g)
	if report == nil {
		return RunResult{}, fmt.Errorf("run failed: %w", runErr)
	}

	res := RunResult{
		RunID:      report.RunID,
		Status:     report.Status,
		Values:     map[string]any{},
		Calls:      report.Calls,
		Skipped:    report.Skipped,
		Failures:   report.Failures,
		DurationMs: float64(report.Duration) / float64(time.Millisecond),
	}
	for k, v := range report.Values.Snapshot() {
		res.Values[k] = host.Export(v)
	}
	if runErr != nil {
		slog.Warn("MCP run_graph: run ended with error", "graph", args.Graph, "error", runErr)
		res.Error = runErr.Error()
	}
	return res, nil
}

// HandleExecuteNode calls a single node.
func (s *Server) HandleExecuteNode(ctx context.Context, request mcp.CallToolRequest, args ExecuteNodeArgs) (NodeResult, error) {
	title := args.Title
	if title == "" {
		title = args.Function
	}
	node := domain.NewNode(title, title)
	node.Code = args.Code
	node.Function = args.Function

	res, err := s.engine.ExecuteNode(ctx, node, args.Args)
	if err != nil {
		return NodeResult{}, err
	}
	return NodeResult{
		Value:      host.Export(res.Value),
		Output:     res.Captured(),
		DurationMs: float64(res.Duration) / float64(time.Millisecond),
	}, nil
}

// PerfReport renders the timing statistics as one line per node, sorted by title.
func (s *Server) PerfReport() string {
	stats := s.engine.Performance()
	if len(stats) == 0 {
		return "no calls recorded"
	}
	titles := make([]string, 0, len(stats))
	for t := range stats {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	var sb strings.Builder
	for _, t := range titles {
		st := stats[t]
		fmt.Fprintf(&sb, "%s: %d calls, last %s, mean %s, min %s, max %s\n", t, st.Count, st.Last, st.Mean, st.Min, st.Max)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("weft://namespace", "Namespace Names",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(map[string][]string{
			"names":   s.engine.NamespaceNames(),
			"objects": s.engine.ObjectKeys(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode namespace: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "weft://namespace",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/host"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes an engine for interactive use: a UI triggers whole runs or
// single nodes on demand and follows the narration over SSE.
type Server struct {
	Engine  ports.Engine
	Graphs  ports.GraphLoader
	Streams *StreamManager
	Version string
	metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithGraphLoader enables POST /runs by graph name or path.
func WithGraphLoader(l ports.GraphLoader) Option {
	return func(s *Server) {
		s.Graphs = l
	}
}

// WithStreams shares a StreamManager, typically one also attached to the engine as a log sink.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/runs", s.PostRun)
	r.Post("/nodes/execute", s.PostExecuteNode)
	r.Get("/namespace", s.GetNamespace)
	r.Post("/namespace/reset", s.PostReset)
	r.Get("/objects", s.GetObjects)
	r.Get("/perf", s.GetPerformance)
	r.Post("/memory/cleanup", s.PostCleanup)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RunRequest selects the graph to run.
type RunRequest struct {
	Graph string `json:"graph"`
}

// RunResponse is the JSON form of a run report.
type RunResponse struct {
	RunID      string               `json:"run_id"`
	Status     domain.RunStatus     `json:"status"`
	Values     map[string]any       `json:"values"`
	Visits     int                  `json:"visits"`
	Calls      int                  `json:"calls"`
	Skipped    []string             `json:"skipped,omitempty"`
	Failures   []domain.NodeFailure `json:"failures,omitempty"`
	DurationMs float64              `json:"duration_ms"`
	Error      string               `json:"error,omitempty"`
}

// NewRunResponse converts a report. Values are deep-copied into plain JSON data.
func NewRunResponse(report *domain.Report, runErr error) RunResponse {
	resp := RunResponse{
		RunID:      report.RunID,
		Status:     report.Status,
		Values:     map[string]any{},
		Visits:     report.Visits,
		Calls:      report.Calls,
		Skipped:    report.Skipped,
		Failures:   report.Failures,
		DurationMs: float64(report.Duration) / float64(time.Millisecond),
	}
	if report.Values != nil {
		for k, v := range report.Values.Snapshot() {
			resp.Values[k] = host.Export(v)
		}
	}
	if runErr != nil {
		resp.Error = runErr.Error()
	}
	return resp
}

// PostRun handles POST /runs.
func (s *Server) PostRun(w http.ResponseWriter, r *http.Request) {
	if s.Graphs == nil {
		http.Error(w, "No graph loader configured", http.StatusNotImplemented)
		return
	}
	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Graph == "" {
		http.Error(w, "Invalid request body: graph is required", http.StatusBadRequest)
		return
	}

	g, err := s.Graphs.Load(body.Graph)
	if err != nil {
		http.Error(w, fmt.Sprintf("Graph error: %v", err), http.StatusNotFound)
		slog.Warn("PostRun: graph not loaded", "graph", body.Graph, "error", err)
		return
	}

	report, runErr := s.Engine.Run(r.Context(), g)
	if report == nil {
		http.Error(w, fmt.Sprintf("Run error: %v", runErr), http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if runErr != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, NewRunResponse(report, runErr))
}

// ExecuteNodeRequest describes a node to call outside of a graph walk.
type ExecuteNodeRequest struct {
	Title    string         `json:"title"`
	Code     string         `json:"code"`
	Function string         `json:"function"`
	Args     map[string]any `json:"args"`
}

// ExecuteNodeResponse is the outcome of a single node call.
type ExecuteNodeResponse struct {
	Value      any     `json:"value"`
	Output     string  `json:"output,omitempty"`
	DurationMs float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// PostExecuteNode handles POST /nodes/execute.
func (s *Server) PostExecuteNode(w http.ResponseWriter, r *http.Request) {
	var body ExecuteNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	node := domain.NewNode(body.Title, body.Title)
	node.Code = body.Code
	node.Function = body.Function

	res, err := s.Engine.ExecuteNode(r.Context(), node, body.Args)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ExecuteNodeResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ExecuteNodeResponse{
		Value:      host.Export(res.Value),
		Output:     res.Captured(),
		DurationMs: float64(res.Duration) / float64(time.Millisecond),
	})
}

// GetNamespace handles GET /namespace.
func (s *Server) GetNamespace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"names": nonNil(s.Engine.NamespaceNames())})
}

// PostReset handles POST /namespace/reset.
func (s *Server) PostReset(w http.ResponseWriter, r *http.Request) {
	s.Engine.ResetNamespace()
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

// GetObjects handles GET /objects.
func (s *Server) GetObjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"keys": nonNil(s.Engine.ObjectKeys())})
}

// PerfEntry is the JSON form of perf.Stats.
type PerfEntry struct {
	Count  int     `json:"count"`
	LastMs float64 `json:"last_ms"`
	MeanMs float64 `json:"mean_ms"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// GetPerformance handles GET /perf.
func (s *Server) GetPerformance(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]PerfEntry)
	for title, st := range s.Engine.Performance() {
		out[title] = PerfEntry{
			Count:  st.Count,
			LastMs: ms(st.Last),
			MeanMs: ms(st.Mean),
			MinMs:  ms(st.Min),
			MaxMs:  ms(st.Max),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// PostCleanup handles POST /memory/cleanup.
func (s *Server) PostCleanup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"collected": s.Engine.CleanupMemory()})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":     "weft-http",
		"version": s.Version,
		"clients": s.Streams.Len(),
	})
}

// SubscribeEvents handles GET /events (SSE). ?run_id= limits the stream to one run.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(r.URL.Query().Get("run_id"))
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: log\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package process

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/perf"
)

// ResultPrefix marks the stdout line carrying a node's return value.
const ResultPrefix = "WEFT_RESULT "

// waitDelay bounds how long output is drained after a canceled process is killed.
const waitDelay = 2 * time.Second

// Runner implements ports.NodeExecutor by running each node in a fresh external
// interpreter process. Arguments travel as WEFT_ARG_<NAME> environment variables,
// the entry function name as WEFT_FUNCTION, and the code as a temporary file
// appended to the command line. Nothing persists between calls.
type Runner struct {
	registry    map[string]InterpreterConfig
	interpreter string
	baseDir     string
	tracker     *perf.Tracker
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(interpreters map[string]InterpreterConfig) RunnerOption {
	return func(r *Runner) {
		for name, it := range interpreters {
			it.Name = name
			r.registry[name] = it
		}
	}
}

// WithInterpreter selects the registered interpreter used for every node.
func WithInterpreter(name string) RunnerOption {
	return func(r *Runner) {
		r.interpreter = name
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTracker records call durations per node title.
func WithTracker(t *perf.Tracker) RunnerOption {
	return func(r *Runner) {
		r.tracker = t
	}
}

// NewRunner creates a new process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]InterpreterConfig),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted interpreter to the allow-list.
// The first registered interpreter becomes the default.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = InterpreterConfig{
		Name:    name,
		Command: command,
		Args:    args,
	}
	if r.interpreter == "" {
		r.interpreter = name
	}
}

// ExecuteNode writes the node code to a temporary file and runs the interpreter on it.
func (r *Runner) ExecuteNode(ctx context.Context, node *domain.Node, args map[string]any) (*domain.Result, error) {
	title := node.Label()
	if node.Function == "" {
		return nil, &domain.NodeError{Title: title, Message: domain.ErrNoFunction.Error(), Err: domain.ErrNoFunction}
	}

	it, ok := r.registry[r.interpreter]
	if !ok {
		err := fmt.Errorf("interpreter not registered: %q", r.interpreter)
		return nil, &domain.NodeError{Title: title, Message: err.Error(), Err: err}
	}

	start := time.Now()
	res, err := r.run(ctx, it, node, args)
	elapsed := time.Since(start)
	if r.tracker != nil {
		r.tracker.Record(title, elapsed)
	}
	if err != nil {
		return nil, err
	}
	res.Duration = elapsed
	return res, nil
}

func (r *Runner) run(ctx context.Context, it InterpreterConfig, node *domain.Node, args map[string]any) (*domain.Result, error) {
	title := node.Label()

	script, err := writeScript(r.baseDir, it.Extension, node.Code)
	if err != nil {
		return nil, &domain.NodeError{Title: title, Message: err.Error(), Err: err}
	}
	defer os.Remove(script)

	cmdArgs := append(append([]string{}, it.Args...), script)
	cmd := exec.CommandContext(ctx, it.Command, cmdArgs...)
	cmd.Dir = r.baseDir
	cmd.WaitDelay = waitDelay
	cmd.Env = append(cmd.Environ(), environment(it, node, args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &domain.NodeError{
			Title:   title,
			Message: fmt.Sprintf("execution failed: %v", err),
			Stderr:  stderr.String(),
			Err:     err,
		}
	}

	text, value := parseOutput(stdout.String())
	return &domain.Result{
		Value:  value,
		Stdout: text,
		Stderr: stderr.String(),
	}, nil
}

func writeScript(dir, ext, code string) (string, error) {
	if ext == "" {
		ext = ".script"
	}
	f, err := os.CreateTemp(dir, "weft-node-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create script file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(code); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write script file: %w", err)
	}
	return f.Name(), nil
}

// environment passes arguments as variables, never as command-line flags.
func environment(it InterpreterConfig, node *domain.Node, args map[string]any) []string {
	env := []string{
		"WEFT_FUNCTION=" + node.Function,
		"WEFT_NODE=" + node.Label(),
	}
	for k, v := range it.Environment {
		env = append(env, k+"="+v)
	}

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		env = append(env, fmt.Sprintf("WEFT_ARG_%s=%s", strings.ToUpper(name), encodeArg(args[name])))
	}
	return env
}

func encodeArg(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int, int64, float64, bool:
		return fmt.Sprintf("%v", val)
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}

// parseOutput separates the result line from the rest of stdout. The result is
// decoded as JSON when possible and kept as text otherwise.
func parseOutput(out string) (string, any) {
	var text strings.Builder
	var value any
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if raw, ok := strings.CutPrefix(line, ResultPrefix); ok {
			var decoded any
			if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
				value = decoded
			} else {
				value = raw
			}
			continue
		}
		text.WriteString(line)
		text.WriteByte('\n')
	}
	return text.String(), value
}

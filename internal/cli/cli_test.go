package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/weft/pkg/config"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doubleGraph = `
name: double
nodes:
  - id: Gen
    function: gen
    code: "function gen() return 21 end"
    outputs: [out]
  - id: Double
    function: double
    code: "function double(x) print('doubling', x) return x * 2 end"
    inputs: [x]
    outputs: [out]
wires:
  - Gen.out -> Double.x
`

const brokenGraph = `
nodes:
  - id: Boom
    function: boom
    code: "function boom() error('kaput') end"
`

// project writes a graph directory and a weft.yaml pointing at it.
func project(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	graphs := filepath.Join(dir, "graphs")
	require.NoError(t, os.Mkdir(graphs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(graphs, "double.yaml"), []byte(doubleGraph), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(graphs, "broken.yaml"), []byte(brokenGraph), 0o644))
	cfg := "graphs: " + graphs + "\nlog:\n  level: \"\"\n" + extra
	path := filepath.Join(dir, "weft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestExecute_JSON(t *testing.T) {
	var out bytes.Buffer
	err := Execute(RunOptions{ConfigPath: project(t, ""), Graph: "double", JSON: true, Out: &out})
	require.NoError(t, err)

	var report RunReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "double", report.Graph)
	assert.Equal(t, domain.RunCompleted, report.Status)
	assert.Equal(t, 42.0, report.Values["Double.out"])
	assert.Equal(t, 2, report.Calls)
}

func TestExecute_TextNarration(t *testing.T) {
	var out bytes.Buffer
	err := Execute(RunOptions{ConfigPath: project(t, ""), Graph: "double", Perf: true, Mermaid: true, Out: &out})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "[info] Double: doubling\t21")
	assert.Contains(t, out.String(), "Environment: embedded Lua 5.1")
	assert.Contains(t, out.String(), "completed")
	assert.Contains(t, out.String(), "Timings")
	assert.Contains(t, out.String(), "class Double visited;")
}

func TestExecute_Failures(t *testing.T) {
	var out bytes.Buffer
	err := Execute(RunOptions{ConfigPath: project(t, ""), Graph: "broken", Headless: true, Out: &out})
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.Empty(t, out.String())

	err = Execute(RunOptions{ConfigPath: project(t, ""), Graph: "absent", Out: &out})
	assert.ErrorIs(t, err, domain.ErrGraphNotFound)

	err = Execute(RunOptions{ConfigPath: project(t, ""), Graph: "double", Watch: true, JSON: true})
	assert.Error(t, err)
}

func TestExecuteNode(t *testing.T) {
	var out bytes.Buffer
	err := ExecuteNode(NodeOptions{
		ConfigPath: project(t, ""),
		Code:       "function add(a, b) return a + b end",
		Function:   "add",
		Args:       `{"a": 2, "b": 40}`,
		JSON:       true,
		Out:        &out,
	})
	require.NoError(t, err)

	var res NodeOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, 42.0, res.Value)

	err = ExecuteNode(NodeOptions{ConfigPath: project(t, ""), Function: "add", Args: "{", Out: &out})
	assert.ErrorContains(t, err, "--args")
}

func TestCreateEngine_Metrics(t *testing.T) {
	cfg := config.Default()
	reg := prometheus.NewRegistry()

	eng, err := createEngine(cfg, EngineOptions{Registry: reg}, createLogger(cfg, false))
	require.NoError(t, err)
	defer eng.Close()
	require.NotNil(t, eng.Metrics)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestCreateEngine_ProcessExecutor(t *testing.T) {
	dir := t.TempDir()
	interpreters := filepath.Join(dir, "interpreters.yaml")
	require.NoError(t, os.WriteFile(interpreters, []byte("interpreters:\n  - name: sh\n    command: sh\n    extension: .sh\n"), 0o644))

	cfg := config.Default()
	cfg.Executor.Kind = config.ExecutorProcess
	cfg.Executor.Interpreters = interpreters

	_, err := createEngine(cfg, EngineOptions{}, createLogger(cfg, false))
	assert.ErrorContains(t, err, "executor.interpreter")

	cfg.Executor.Interpreter = "python"
	_, err = createEngine(cfg, EngineOptions{}, createLogger(cfg, false))
	assert.ErrorContains(t, err, `"python" not found`)

	cfg.Executor.Interpreter = "sh"
	eng, err := createEngine(cfg, EngineOptions{}, createLogger(cfg, false))
	require.NoError(t, err)
	eng.Close()
}

func TestValidate(t *testing.T) {
	path := project(t, "")
	var out bytes.Buffer
	require.NoError(t, Validate(path, nil, &out))
	assert.Contains(t, out.String(), "✓ broken (1 nodes)")
	assert.Contains(t, out.String(), "✓ double (2 nodes)")

	dir := filepath.Join(filepath.Dir(path), "graphs")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "typo.yaml"), []byte("nodes:\n  - id: A\n    fucntion: a\n"), 0o644))
	out.Reset()
	assert.Error(t, Validate(path, nil, &out))
	assert.Contains(t, out.String(), "✗ typo")
}

func TestGraph(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Graph(project(t, ""), "double", &out))
	assert.Contains(t, out.String(), `Gen -. "out → x" .-> Double`)
}

func TestExecuteNode_BuiltinFunctions(t *testing.T) {
	t.Setenv("WEFT_GREETING", "hello")
	var out bytes.Buffer
	err := ExecuteNode(NodeOptions{
		ConfigPath: project(t, ""),
		Code: `function greet()
  return getenv({name = "WEFT_GREETING"}) .. " " .. getenv({name = "WEFT_MISSING", default = "world"})
end`,
		Function: "greet",
		JSON:     true,
		Out:      &out,
	})
	require.NoError(t, err)

	var res NodeOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "hello world", res.Value)
}

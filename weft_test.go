package weft_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := dsl.New("example").
		Node("Gen").Function("gen").Code("function gen() return 42 end").DataOut("out").
		Node("Double").Function("double").Code("function double(x) return x * 2 end").DataIn("x").DataOut("out").
		Node("Show").Function("show").Code("function show(y) print(y) end").DataIn("y").
		Wire("Gen.out", "Double.x").
		Wire("Double.out", "Show.y").
		Build()
	require.NoError(t, err)
	return g
}

func TestFacade_Run(t *testing.T) {
	sink := memory.NewSink()
	eng, err := weft.New(weft.WithLogSink(sink))
	require.NoError(t, err)
	defer eng.Close()

	report, err := eng.Run(context.Background(), exampleGraph(t))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"Gen.out": 42.0, "Double.out": 84.0}, report.Values.Snapshot())
	assert.NotEmpty(t, sink.ByNode("Show"))
	assert.Contains(t, eng.NamespaceNames(), "double")
	assert.Contains(t, eng.Performance(), "Show")
}

func TestFacade_ObjectsAndReset(t *testing.T) {
	eng, err := weft.New()
	require.NoError(t, err)
	defer eng.Close()

	payload := &bytes.Buffer{}
	assert.True(t, eng.StoreObject("buf", payload))
	got, ok := eng.GetObject("buf")
	require.True(t, ok)
	assert.Same(t, payload, got)

	_, err = eng.Run(context.Background(), exampleGraph(t))
	require.NoError(t, err)

	eng.ResetNamespace()
	assert.Empty(t, eng.ObjectKeys())
	assert.NotContains(t, eng.NamespaceNames(), "double")
	assert.Empty(t, eng.Performance())
	assert.GreaterOrEqual(t, eng.CleanupMemory(), 0)
}

func TestFacade_ExecuteNode(t *testing.T) {
	eng, err := weft.New()
	require.NoError(t, err)
	defer eng.Close()

	n := domain.NewNode("add", "Add")
	n.Code = "function add(a, b) return a + b end"
	n.Function = "add"

	res, err := eng.ExecuteNode(context.Background(), n, map[string]any{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Value)
}

type staticExecutor struct{}

func (staticExecutor) ExecuteNode(_ context.Context, n *domain.Node, _ map[string]any) (*domain.Result, error) {
	return &domain.Result{Value: n.ID}, nil
}

func TestFacade_CustomExecutor(t *testing.T) {
	eng, err := weft.New(weft.WithExecutor(staticExecutor{}))
	require.NoError(t, err)
	defer eng.Close()

	report, err := eng.Run(context.Background(), exampleGraph(t))
	require.NoError(t, err)
	assert.Equal(t, "Gen", report.Values.Snapshot()["Gen.out"])

	assert.False(t, eng.StoreObject("k", 1))
	assert.Nil(t, eng.Namespace())
	assert.Nil(t, eng.NamespaceNames())
	assert.NotPanics(t, func() { eng.ResetNamespace() })
}

func TestRunner_WritesSummary(t *testing.T) {
	eng, err := weft.New()
	require.NoError(t, err)
	defer eng.Close()

	var out bytes.Buffer
	r := weft.NewRunner()
	r.Output = &out
	r.Renderer = func(s string) (string, error) { return strings.ToUpper(s), nil }

	report, err := r.Run(context.Background(), eng, exampleGraph(t))
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Contains(t, out.String(), "## RUN EXAMPLE")
	assert.Contains(t, out.String(), "DOUBLE.OUT")
}

func TestRunner_RequiresOutput(t *testing.T) {
	eng, err := weft.New()
	require.NoError(t, err)
	defer eng.Close()

	_, err = weft.NewRunner().Run(context.Background(), eng, exampleGraph(t))
	assert.Error(t, err)
}

func TestSummary_ListsFailures(t *testing.T) {
	g := domain.NewGraph("broken")
	report := &domain.Report{
		RunID:    "r1",
		Status:   domain.RunCompleted,
		Values:   domain.NewPinValues(),
		Skipped:  []string{"Note"},
		Failures: []domain.NodeFailure{{NodeID: "b", Title: "Bad", Error: "node \"Bad\" failed: boom\n[stderr] oops"}},
	}

	out := weft.Summary(g, report)
	assert.Contains(t, out, "### Failures")
	assert.Contains(t, out, "**Bad**")
	assert.Contains(t, out, "boom [stderr] oops")
	assert.Contains(t, out, "Note")
}

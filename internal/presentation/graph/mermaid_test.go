package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := dsl.New("sample").
		Node("load-data").Title("Load \"csv\"").Function("load").DataOut("rows").Then("Note").
		Node("Note").
		Reroute("R").
		Node("Sum").Function("sum").DataIn("xs").
		Wire("load-data.rows", "R.in").
		Wire("R.out", "Sum.xs").
		Build()
	require.NoError(t, err)
	return g
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(sample(t), nil)

	for _, want := range []string{
		"graph LR\n",
		`load_data["Load 'csv' <br/> <i>load</i>"]`,
		`Note("Note")`,
		`R((" "))`,
		"load_data --> Note",
		`load_data -. "rows → in" .-> R`,
		`R -. "out → xs" .-> Sum`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	report := &domain.Report{
		Trace:    []string{"load-data", "Note", "R", "Sum", "Sum"},
		Skipped:  []string{"Note"},
		Failures: []domain.NodeFailure{{NodeID: "Sum", Title: "Sum", Error: "boom"}},
	}

	out := graph.GenerateMermaid(sample(t), graph.OverlayFromReport(report))

	assert.Contains(t, out, "class load_data visited;")
	assert.Contains(t, out, "class Note skipped;")
	assert.Contains(t, out, "class Sum failed;")
	assert.Equal(t, 1, strings.Count(out, "class Sum visited;"))
	assert.Less(t, strings.Index(out, "class Sum visited;"), strings.Index(out, "class Sum failed;"))
}

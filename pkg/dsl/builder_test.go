package dsl

import (
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_DataFlow(t *testing.T) {
	g, err := New("flow").
		Node("Gen").Title("Generator").Function("gen").Code("function gen() return 1 end").DataOut("out").
		Node("Show").Function("show").DataIn("v").
		Wire("Gen.out", "Show.v").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "flow", g.Name)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "Gen", g.Nodes[0].ID)
	assert.Equal(t, "Generator", g.Nodes[0].Label())
	assert.Equal(t, "gen", g.Nodes[0].Function)

	conns := g.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "Generator.out", conns[0].From.String())
	assert.Equal(t, "Show.v", conns[0].To.String())
}

func TestBuilder_ThenCreatesFlowPins(t *testing.T) {
	g, err := New("then").
		Node("A").Function("a").Then("B").
		Node("B").Function("b").
		Build()
	require.NoError(t, err)

	a, b := g.Node("A"), g.Node("B")
	require.NotNil(t, a.Output(FlowOut))
	require.NotNil(t, b.Input(FlowIn))
	assert.Equal(t, domain.PinExecution, a.Output(FlowOut).Kind)
	assert.True(t, b.Input(FlowIn).Connected())
}

func TestBuilder_Reroute(t *testing.T) {
	g, err := New("reroute").
		Node("P").DataOut("out").
		Reroute("R").
		Node("C").DataIn("v").
		Wire("P.out", "R.in").
		Wire("R.out", "C.v").
		Build()
	require.NoError(t, err)

	r := g.Node("R")
	assert.True(t, r.Reroute)
	assert.True(t, r.RerouteIn().Connected())
	assert.True(t, r.RerouteOut().Connected())
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
	}{
		{"bad endpoint", New("x").Node("A").DataOut("out").Node("B").DataIn("v").Wire("A", "B.v").builder},
		{"unknown node", New("x").Node("A").DataOut("out").Wire("A.out", "Z.v").builder},
		{"kind mismatch", New("x").Node("A").ExecOut("go").Node("B").DataIn("v").Wire("A.go", "B.v").builder},
		{"duplicate reroute", New("x").Node("R").Reroute("R").builder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			assert.Error(t, err)
		})
	}
}

func TestBuilder_AddIsIdempotent(t *testing.T) {
	b := New("same")
	first := b.Add("A")
	assert.Same(t, first, b.Add("A"))
}

func TestNodeBuilder_Hooks(t *testing.T) {
	var published map[string]any
	nb := New("hooks").Node("A").
		Defaults(map[string]any{"x": 1}).
		Publish(func(v map[string]any) { published = v })

	n := nb.Raw()
	assert.Equal(t, map[string]any{"x": 1}, n.ReadDefaults())
	n.PublishResult(map[string]any{"out": 2})
	assert.Equal(t, map[string]any{"out": 2}, published)
}

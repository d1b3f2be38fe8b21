package domain

import "fmt"

// Graph is an ordered collection of nodes.
// Node order is the discovery order used when looking for entry points.
type Graph struct {
	Name  string
	Nodes []*Node
}

// NewGraph creates an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{Name: name}
}

// Add appends nodes to the graph.
func (g *Graph) Add(nodes ...*Node) {
	g.Nodes = append(g.Nodes, nodes...)
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Connect wires "<node>.<pin>" endpoints by ID.
func (g *Graph) Connect(fromNode, fromPin, toNode, toPin string) (*Connection, error) {
	src := g.Node(fromNode)
	if src == nil {
		return nil, fmt.Errorf("unknown node %q", fromNode)
	}
	dst := g.Node(toNode)
	if dst == nil {
		return nil, fmt.Errorf("unknown node %q", toNode)
	}
	out := src.Output(fromPin)
	if out == nil {
		return nil, fmt.Errorf("node %q has no output %q", fromNode, fromPin)
	}
	in := dst.Input(toPin)
	if in == nil {
		return nil, fmt.Errorf("node %q has no input %q", toNode, toPin)
	}
	return Connect(out, in)
}

// Connections lists every connection once, in node and pin order.
func (g *Graph) Connections() []*Connection {
	var out []*Connection
	for _, n := range g.Nodes {
		for _, p := range n.Outputs {
			out = append(out, p.Connections...)
		}
	}
	return out
}

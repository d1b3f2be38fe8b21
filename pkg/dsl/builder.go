package dsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// Default pin names used by Then.
const (
	FlowIn  = "exec"
	FlowOut = "then"
)

type wire struct {
	from, to string
	flow     bool
}

// Builder manages the graph construction.
type Builder struct {
	name  string
	nodes []*NodeBuilder
	index map[string]*NodeBuilder
	wires []wire
	errs  []error
}

// New creates a new graph builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		index: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.index[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.NewNode(id, id),
		builder: b,
	}
	b.nodes = append(b.nodes, nb)
	b.index[id] = nb
	return nb
}

// Node is Add, named for chaining.
func (b *Builder) Node(id string) *NodeBuilder {
	return b.Add(id)
}

// Reroute adds a pass-through node.
func (b *Builder) Reroute(id string) *NodeBuilder {
	if _, ok := b.index[id]; ok {
		b.errs = append(b.errs, fmt.Errorf("node %q already exists", id))
		return b.index[id]
	}
	nb := &NodeBuilder{node: domain.NewReroute(id), builder: b}
	b.nodes = append(b.nodes, nb)
	b.index[id] = nb
	return nb
}

// Wire connects two "<node>.<pin>" endpoints, from an output to an input.
func (b *Builder) Wire(from, to string) *Builder {
	b.wires = append(b.wires, wire{from: from, to: to})
	return b
}

// Build creates the graph and applies every wire.
func (b *Builder) Build() (*domain.Graph, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	g := domain.NewGraph(b.name)
	for _, nb := range b.nodes {
		g.Add(nb.node)
	}

	var errs []error
	for _, w := range b.wires {
		fromNode, fromPin, err := splitEndpoint(w.from)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		toNode, toPin, err := splitEndpoint(w.to)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if w.flow {
			ensurePin(g.Node(fromNode), fromPin, domain.DirectionOutput)
			ensurePin(g.Node(toNode), toPin, domain.DirectionInput)
		}
		if _, err := g.Connect(fromNode, fromPin, toNode, toPin); err != nil {
			errs = append(errs, fmt.Errorf("wire %s -> %s: %w", w.from, w.to, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g, nil
}

func splitEndpoint(s string) (node, pin string, err error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("invalid endpoint %q: want <node>.<pin>", s)
	}
	return s[:i], s[i+1:], nil
}

func ensurePin(n *domain.Node, name string, dir domain.PinDirection) {
	if n == nil {
		return
	}
	if dir == domain.DirectionOutput {
		if n.Output(name) == nil {
			n.AddOutput(name, domain.PinExecution)
		}
		return
	}
	if n.Input(name) == nil {
		n.AddInput(name, domain.PinExecution)
	}
}

package dsl

import "github.com/aretw0/weft/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    *domain.Node
	builder *Builder
}

// Title sets the display title. The ID is used when it is empty.
func (n *NodeBuilder) Title(title string) *NodeBuilder {
	n.node.Title = title
	return n
}

// Code sets the source fragment evaluated before the entry function is called.
func (n *NodeBuilder) Code(code string) *NodeBuilder {
	n.node.Code = code
	return n
}

// Function names the entry function. Nodes without one are skipped by the walk.
func (n *NodeBuilder) Function(name string) *NodeBuilder {
	n.node.Function = name
	return n
}

// DataIn declares value-carrying inputs, in order.
func (n *NodeBuilder) DataIn(names ...string) *NodeBuilder {
	for _, name := range names {
		n.node.AddInput(name, domain.PinData)
	}
	return n
}

// DataOut declares value-carrying outputs, in order.
func (n *NodeBuilder) DataOut(names ...string) *NodeBuilder {
	for _, name := range names {
		n.node.AddOutput(name, domain.PinData)
	}
	return n
}

// ExecIn declares control-flow inputs.
func (n *NodeBuilder) ExecIn(names ...string) *NodeBuilder {
	for _, name := range names {
		n.node.AddInput(name, domain.PinExecution)
	}
	return n
}

// ExecOut declares control-flow outputs.
func (n *NodeBuilder) ExecOut(names ...string) *NodeBuilder {
	for _, name := range names {
		n.node.AddOutput(name, domain.PinExecution)
	}
	return n
}

// Defaults supplies values for unconnected data inputs.
func (n *NodeBuilder) Defaults(values map[string]any) *NodeBuilder {
	n.node.ReadDefaults = func() map[string]any { return values }
	return n
}

// Publish sets the hook receiving output values after each successful call.
func (n *NodeBuilder) Publish(fn func(map[string]any)) *NodeBuilder {
	n.node.PublishResult = fn
	return n
}

// Then adds a control-flow edge from this node to target, creating the
// "then" output and "exec" input when they are missing.
func (n *NodeBuilder) Then(target string) *NodeBuilder {
	n.builder.wires = append(n.builder.wires, wire{
		from: n.node.ID + "." + FlowOut,
		to:   target + "." + FlowIn,
		flow: true,
	})
	return n
}

// Node starts the next node.
func (n *NodeBuilder) Node(id string) *NodeBuilder {
	return n.builder.Add(id)
}

// Reroute starts a pass-through node.
func (n *NodeBuilder) Reroute(id string) *NodeBuilder {
	return n.builder.Reroute(id)
}

// Wire connects two "<node>.<pin>" endpoints.
func (n *NodeBuilder) Wire(from, to string) *NodeBuilder {
	n.builder.Wire(from, to)
	return n
}

// Build builds the whole graph.
func (n *NodeBuilder) Build() (*domain.Graph, error) {
	return n.builder.Build()
}

// Raw returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Raw() *domain.Node {
	return n.node
}

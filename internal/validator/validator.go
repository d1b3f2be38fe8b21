// Package validator checks graph structure before a run.
package validator

import (
	"errors"
	"fmt"

	"github.com/aretw0/weft/internal/runtime"
	"github.com/aretw0/weft/pkg/domain"
)

// ValidateGraph reports every structural problem found in g, joined into one error.
// A nil result means the coordinator can walk g.
func ValidateGraph(g *domain.Graph) error {
	if g == nil {
		return errors.New("graph is nil")
	}

	var errs []error
	members := make(map[*domain.Node]bool, len(g.Nodes))
	ids := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if n == nil {
			errs = append(errs, fmt.Errorf("node #%d is nil", i))
			continue
		}
		members[n] = true
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("node #%d: missing id", i))
		} else if ids[n.ID] {
			errs = append(errs, fmt.Errorf("node %q: duplicate id", n.ID))
		}
		ids[n.ID] = true
		errs = append(errs, checkPins(n)...)
		if n.Reroute {
			errs = append(errs, checkReroute(n)...)
		}
	}

	for _, n := range g.Nodes {
		if n == nil {
			continue
		}
		for _, p := range n.Outputs {
			for _, c := range p.Connections {
				errs = append(errs, checkConnection(c, members)...)
			}
		}
	}

	if len(g.Nodes) > 0 && len(runtime.EntryPoints(g)) == 0 {
		errs = append(errs, domain.ErrNoEntryPoint)
	}
	return errors.Join(errs...)
}

func checkPins(n *domain.Node) []error {
	var errs []error
	check := func(pins []*domain.Pin, dir domain.PinDirection) {
		names := make(map[string]bool, len(pins))
		for _, p := range pins {
			if p.Owner != n {
				errs = append(errs, fmt.Errorf("node %q: pin %q is owned by another node", n.ID, p.Name))
			}
			if p.Direction != dir {
				errs = append(errs, fmt.Errorf("node %q: pin %q listed as %s but declared %s", n.ID, p.Name, dir, p.Direction))
			}
			if names[p.Name] {
				errs = append(errs, fmt.Errorf("node %q: duplicate %s pin %q", n.ID, dir, p.Name))
			}
			names[p.Name] = true
		}
	}
	check(n.Inputs, domain.DirectionInput)
	check(n.Outputs, domain.DirectionOutput)
	return errs
}

func checkReroute(n *domain.Node) []error {
	var errs []error
	if len(n.Inputs) != 1 || len(n.Outputs) != 1 {
		errs = append(errs, fmt.Errorf("reroute %q: want one input and one output, got %d and %d", n.ID, len(n.Inputs), len(n.Outputs)))
	}
	if n.Code != "" || n.Function != "" {
		errs = append(errs, fmt.Errorf("reroute %q: carries code", n.ID))
	}
	if in := n.RerouteIn(); in != nil && len(in.Connections) > 1 {
		errs = append(errs, fmt.Errorf("reroute %q: %d upstream connections, want at most one", n.ID, len(in.Connections)))
	}
	return errs
}

func checkConnection(c *domain.Connection, members map[*domain.Node]bool) []error {
	if c.From == nil || c.To == nil {
		return []error{errors.New("connection with a missing endpoint")}
	}
	var errs []error
	if c.From.Direction != domain.DirectionOutput || c.To.Direction != domain.DirectionInput {
		errs = append(errs, fmt.Errorf("connection %s -> %s: %w", c.From, c.To, domain.ErrDirectionMismatch))
	}
	if c.From.Kind != c.To.Kind {
		errs = append(errs, fmt.Errorf("connection %s -> %s: %w", c.From, c.To, domain.ErrKindMismatch))
	}
	if !members[c.To.Owner] {
		errs = append(errs, fmt.Errorf("connection %s -> %s: target node is not part of the graph", c.From, c.To))
	}
	if !listed(c.To.Connections, c) {
		errs = append(errs, fmt.Errorf("connection %s -> %s: not recorded on its input pin", c.From, c.To))
	}
	return errs
}

func listed(conns []*domain.Connection, c *domain.Connection) bool {
	for _, x := range conns {
		if x == c {
			return true
		}
	}
	return false
}

// Unreachable lists the IDs of nodes no run of g can visit, in graph order.
// These sit on execution cycles that no entry point leads into.
func Unreachable(g *domain.Graph) []string {
	seen := make(map[*domain.Node]bool, len(g.Nodes))
	queue := runtime.EntryPoints(g)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true

		var pins []*domain.Pin
		if n.Reroute {
			pins = n.Outputs
		} else {
			pins = n.ExecOutputs()
		}
		for _, p := range pins {
			for _, c := range p.Connections {
				if !seen[c.To.Owner] {
					queue = append(queue, c.To.Owner)
				}
			}
		}
	}

	var out []string
	for _, n := range g.Nodes {
		if !seen[n] {
			out = append(out, n.ID)
		}
	}
	return out
}

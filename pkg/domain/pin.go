package domain

import "fmt"

// PinKind separates control-flow pins from value-carrying pins.
type PinKind string

const (
	// PinExecution pins only order the walk; they carry no value.
	PinExecution PinKind = "execution"
	// PinData pins carry the values produced by node calls.
	PinData PinKind = "data"
)

// PinDirection tells whether a pin receives or emits.
type PinDirection string

const (
	DirectionInput  PinDirection = "input"
	DirectionOutput PinDirection = "output"
)

// Pin is an endpoint owned by exactly one node.
// Owner is a back-reference; the node owns the pin, not the other way round.
type Pin struct {
	Name        string
	Kind        PinKind
	Direction   PinDirection
	Owner       *Node
	Connections []*Connection
}

// IsData reports whether the pin carries values.
func (p *Pin) IsData() bool {
	return p.Kind == PinData
}

// IsExecution reports whether the pin is control flow only.
func (p *Pin) IsExecution() bool {
	return p.Kind == PinExecution
}

// Connected reports whether the pin takes part in at least one connection.
func (p *Pin) Connected() bool {
	return len(p.Connections) > 0
}

// String renders the pin as "<node>.<pin>".
func (p *Pin) String() string {
	if p.Owner == nil {
		return "?." + p.Name
	}
	return p.Owner.Label() + "." + p.Name
}

// Connection is a directed edge between two pins of the same kind.
type Connection struct {
	From *Pin
	To   *Pin
}

// Connect joins an output pin to an input pin and records the connection on both ends.
func Connect(from, to *Pin) (*Connection, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("connect: nil pin")
	}
	if from.Direction != DirectionOutput || to.Direction != DirectionInput {
		return nil, fmt.Errorf("connect %s -> %s: %w", from, to, ErrDirectionMismatch)
	}
	if from.Kind != to.Kind {
		return nil, fmt.Errorf("connect %s (%s) -> %s (%s): %w", from, from.Kind, to, to.Kind, ErrKindMismatch)
	}
	c := &Connection{From: from, To: to}
	from.Connections = append(from.Connections, c)
	to.Connections = append(to.Connections, c)
	return c, nil
}

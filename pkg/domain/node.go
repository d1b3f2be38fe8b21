package domain

// Reroute pin names.
const (
	RerouteInputName  = "in"
	RerouteOutputName = "out"
)

// Node represents a unit of user code in the graph.
// The graph owns nodes; the engine only borrows them for one run.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`

	// Code is the source fragment evaluated before the entry function is called.
	Code string `json:"code,omitempty" yaml:"code,omitempty"`

	// Function names the entry function. Empty means the node is a no-op.
	Function string `json:"function,omitempty" yaml:"function,omitempty"`

	Inputs  []*Pin `json:"-" yaml:"-"`
	Outputs []*Pin `json:"-" yaml:"-"`

	// Reroute marks a codeless pass-through node with one data input and one data output.
	Reroute bool `json:"reroute,omitempty" yaml:"reroute,omitempty"`

	// PublishResult, when set, receives output-pin name -> value after a successful call.
	PublishResult func(values map[string]any) `json:"-" yaml:"-"`

	// ReadDefaults, when set, supplies values for unconnected data inputs.
	ReadDefaults func() map[string]any `json:"-" yaml:"-"`
}

// NewNode creates a node without pins.
func NewNode(id, title string) *Node {
	return &Node{ID: id, Title: title}
}

// NewReroute creates a reroute node with its single data input and output.
func NewReroute(id string) *Node {
	n := &Node{ID: id, Title: id, Reroute: true}
	n.AddInput(RerouteInputName, PinData)
	n.AddOutput(RerouteOutputName, PinData)
	return n
}

// Label is the title when present, otherwise the ID.
func (n *Node) Label() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// AddInput appends an input pin owned by n.
func (n *Node) AddInput(name string, kind PinKind) *Pin {
	p := &Pin{Name: name, Kind: kind, Direction: DirectionInput, Owner: n}
	n.Inputs = append(n.Inputs, p)
	return p
}

// AddOutput appends an output pin owned by n.
func (n *Node) AddOutput(name string, kind PinKind) *Pin {
	p := &Pin{Name: name, Kind: kind, Direction: DirectionOutput, Owner: n}
	n.Outputs = append(n.Outputs, p)
	return p
}

// Input returns the input pin with the given name, or nil.
func (n *Node) Input(name string) *Pin {
	return findPin(n.Inputs, name)
}

// Output returns the output pin with the given name, or nil.
func (n *Node) Output(name string) *Pin {
	return findPin(n.Outputs, name)
}

// DataInputs returns the value-carrying input pins in declaration order.
func (n *Node) DataInputs() []*Pin {
	return filterPins(n.Inputs, PinData)
}

// DataOutputs returns the value-carrying output pins in declaration order.
func (n *Node) DataOutputs() []*Pin {
	return filterPins(n.Outputs, PinData)
}

// ExecInputs returns the control-flow input pins in declaration order.
func (n *Node) ExecInputs() []*Pin {
	return filterPins(n.Inputs, PinExecution)
}

// ExecOutputs returns the control-flow output pins in declaration order.
func (n *Node) ExecOutputs() []*Pin {
	return filterPins(n.Outputs, PinExecution)
}

// RerouteIn returns the sole data input of a reroute node.
func (n *Node) RerouteIn() *Pin {
	if !n.Reroute || len(n.Inputs) == 0 {
		return nil
	}
	return n.Inputs[0]
}

// RerouteOut returns the sole data output of a reroute node.
func (n *Node) RerouteOut() *Pin {
	if !n.Reroute || len(n.Outputs) == 0 {
		return nil
	}
	return n.Outputs[0]
}

func findPin(pins []*Pin, name string) *Pin {
	for _, p := range pins {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func filterPins(pins []*Pin, kind PinKind) []*Pin {
	var out []*Pin
	for _, p := range pins {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// Package dto holds the on-disk shape of graph documents.
package dto

// GraphDocument is a graph as written in a YAML or JSON file.
// It uses "mapstructure" tags so the decoded document map can be checked for unknown keys.
type GraphDocument struct {
	Name  string         `json:"name" mapstructure:"name"`
	Nodes []NodeDocument `json:"nodes" mapstructure:"nodes"`
	Wires []WireDocument `json:"wires" mapstructure:"wires"`
}

// NodeDocument describes one node. Inputs and Outputs are data pins.
type NodeDocument struct {
	ID       string `json:"id" mapstructure:"id"`
	Title    string `json:"title" mapstructure:"title"`
	Code     string `json:"code" mapstructure:"code"`
	Function string `json:"function" mapstructure:"function"`
	Reroute  bool   `json:"reroute" mapstructure:"reroute"`

	Inputs      []string `json:"inputs" mapstructure:"inputs"`
	Outputs     []string `json:"outputs" mapstructure:"outputs"`
	ExecInputs  []string `json:"exec_inputs" mapstructure:"exec_inputs"`
	ExecOutputs []string `json:"exec_outputs" mapstructure:"exec_outputs"`

	// Then lists control-flow successors by node ID.
	Then []string `json:"then" mapstructure:"then"`

	Defaults map[string]any `json:"defaults" mapstructure:"defaults"`
}

// WireDocument connects two "<node>.<pin>" endpoints.
// In a document it may also be written as the string "Gen.out -> Double.x".
type WireDocument struct {
	From string `json:"from" mapstructure:"from"`
	To   string `json:"to" mapstructure:"to"`
}

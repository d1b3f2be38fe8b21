// Package compiler turns graph documents into domain graphs.
package compiler

import (
	"errors"
	"fmt"

	"github.com/aretw0/weft/internal/dto"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
)

// Compile builds the graph described by doc. name is used when the document has none.
func Compile(doc *dto.GraphDocument, name string) (*domain.Graph, error) {
	if doc.Name != "" {
		name = doc.Name
	}
	b := dsl.New(name)

	var errs []error
	seen := make(map[string]bool, len(doc.Nodes))
	for i, nd := range doc.Nodes {
		if nd.ID == "" {
			errs = append(errs, fmt.Errorf("node #%d: missing id", i))
			continue
		}
		if seen[nd.ID] {
			errs = append(errs, fmt.Errorf("node %q: duplicate id", nd.ID))
			continue
		}
		seen[nd.ID] = true

		if nd.Reroute {
			if nd.Code != "" || nd.Function != "" || len(nd.Inputs)+len(nd.Outputs) > 0 {
				errs = append(errs, fmt.Errorf("node %q: a reroute carries no code and no pins", nd.ID))
				continue
			}
			b.Reroute(nd.ID)
			continue
		}

		nb := b.Add(nd.ID).
			Code(nd.Code).
			Function(nd.Function).
			ExecIn(nd.ExecInputs...).
			DataIn(nd.Inputs...).
			ExecOut(nd.ExecOutputs...).
			DataOut(nd.Outputs...)
		if nd.Title != "" {
			nb.Title(nd.Title)
		}
		if len(nd.Defaults) > 0 {
			nb.Defaults(nd.Defaults)
		}
		for _, next := range nd.Then {
			nb.Then(next)
		}
	}

	for _, w := range doc.Wires {
		b.Wire(w.From, w.To)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return b.Build()
}

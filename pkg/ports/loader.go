package ports

import "github.com/aretw0/weft/pkg/domain"

// GraphLoader defines how graphs are obtained from storage.
// The on-disk format belongs to the loader; the engine only sees domain.Graph.
type GraphLoader interface {
	Load(path string) (*domain.Graph, error)
}

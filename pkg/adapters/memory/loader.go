package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// Loader implements ports.GraphLoader over graphs registered by name.
// Safe for concurrent use.
type Loader struct {
	mu     sync.RWMutex
	graphs map[string]*domain.Graph
}

// NewLoader creates a Loader holding the given graphs, keyed by their names.
func NewLoader(graphs ...*domain.Graph) (*Loader, error) {
	l := &Loader{graphs: make(map[string]*domain.Graph)}
	for _, g := range graphs {
		if g.Name == "" {
			return nil, fmt.Errorf("graph missing name")
		}
		l.graphs[g.Name] = g
	}
	return l, nil
}

// Register adds or replaces a graph under name.
func (l *Loader) Register(name string, g *domain.Graph) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.graphs[name] = g
}

// Load returns the graph registered under name.
func (l *Loader) Load(name string) (*domain.Graph, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.graphs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, name)
	}
	return g, nil
}

// Names returns the registered graph names in sorted order.
func (l *Loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.graphs))
	for k := range l.graphs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package file loads graphs from YAML or JSON documents on disk.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/weft/internal/compiler"
	"github.com/aretw0/weft/pkg/domain"
)

var extensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.GraphLoader over a directory of graph documents.
type Loader struct {
	Root   string
	parser *compiler.Parser
}

// New creates a Loader resolving relative paths against root.
func New(root string) *Loader {
	return &Loader{Root: root, parser: compiler.NewParser()}
}

// Load reads and compiles a graph. The extension may be omitted.
func (l *Loader) Load(path string) (*domain.Graph, error) {
	full, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(full), filepath.Ext(full))
	g, err := l.Parse(data, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse compiles a document held in memory. name is used when the document has none.
func (l *Loader) Parse(data []byte, name string) (*domain.Graph, error) {
	doc, err := l.parser.Parse(data)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(doc, name)
}

// Names lists the graph documents directly under Root, without extensions.
func (l *Loader) Names() ([]string, error) {
	entries, err := os.ReadDir(l.root())
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		for _, known := range extensions {
			if ext == known {
				names = append(names, strings.TrimSuffix(e.Name(), ext))
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) root() string {
	if l.Root == "" {
		return "."
	}
	return l.Root
}

// Resolve returns the file holding the graph, trying the known extensions when path has none.
func (l *Loader) Resolve(path string) (string, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.root(), path)
	}
	if _, err := os.Stat(full); err == nil {
		return full, nil
	}
	for _, ext := range extensions {
		if _, err := os.Stat(full + ext); err == nil {
			return full + ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrGraphNotFound, path)
}

// IsNotFound reports whether err means the graph document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrGraphNotFound)
}

package logsink

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// JSON writes entries as newline-delimited JSON objects.
type JSON struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSON creates a JSON sink writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

// Log encodes the entry. Encoding failures are dropped.
func (j *JSON) Log(_ context.Context, e domain.LogEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(e)
}

// ReadJSON decodes entries written by a JSON sink.
func ReadJSON(r io.Reader) ([]domain.LogEntry, error) {
	dec := json.NewDecoder(r)
	var out []domain.LogEntry
	for dec.More() {
		var e domain.LogEntry
		if err := dec.Decode(&e); err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

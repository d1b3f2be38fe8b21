package runtime

import (
	"reflect"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/host"
)

// Distribute records value on the data outputs and returns what each pin received,
// keyed by pin name. A single output takes the whole value; several outputs take
// one element each of a sequence value (a Go slice or a Lua array table) in declaration order, and extra pins or
// elements are ignored. A non-sequence value with several outputs goes to the first.
func Distribute(outputs []*domain.Pin, value any, values *domain.PinValues) map[string]any {
	produced := make(map[string]any, len(outputs))
	switch len(outputs) {
	case 0:
		return produced
	case 1:
		values.Set(outputs[0], value)
		produced[outputs[0].Name] = value
		return produced
	}

	seq, ok := sequence(value)
	if !ok {
		values.Set(outputs[0], value)
		produced[outputs[0].Name] = value
		return produced
	}
	for i, p := range outputs {
		if i >= len(seq) {
			break
		}
		values.Set(p, seq[i])
		produced[p.Name] = seq[i]
	}
	return produced
}

func sequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []byte:
		return nil, false
	}
	if elems, ok := host.Elements(value); ok {
		return elems, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

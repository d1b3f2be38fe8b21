package domain

import (
	"fmt"
	"sort"
	"strings"
)

// PinValues maps data output pins to the values they produced in the current run.
// It has no entry for a pin whose node has not executed yet.
type PinValues struct {
	values map[*Pin]any
	order  []*Pin
}

// NewPinValues creates an empty table.
func NewPinValues() *PinValues {
	return &PinValues{values: make(map[*Pin]any)}
}

// Set records the value produced on pin.
func (v *PinValues) Set(pin *Pin, value any) {
	if _, ok := v.values[pin]; !ok {
		v.order = append(v.order, pin)
	}
	v.values[pin] = value
}

// Get returns the value recorded for pin.
func (v *PinValues) Get(pin *Pin) (any, bool) {
	val, ok := v.values[pin]
	return val, ok
}

// Has reports whether pin has a recorded value.
func (v *PinValues) Has(pin *Pin) bool {
	_, ok := v.values[pin]
	return ok
}

// Len returns the number of recorded pins.
func (v *PinValues) Len() int {
	return len(v.values)
}

// Snapshot returns the values keyed by "<node label>.<pin name>".
func (v *PinValues) Snapshot() map[string]any {
	out := make(map[string]any, len(v.values))
	for _, p := range v.order {
		out[p.String()] = v.values[p]
	}
	return out
}

// FormatArgs renders call arguments as "a=1, b=x" in name order.
func FormatArgs(args map[string]any) string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", name, args[name])
	}
	return sb.String()
}

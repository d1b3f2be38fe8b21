package compiler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/weft/internal/dto"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parser converts raw YAML (or JSON, a YAML subset) into a graph document.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes data. Unknown keys are rejected so typos surface early.
func (p *Parser) Parse(data []byte) (*dto.GraphDocument, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse graph: empty document")
	}

	var doc dto.GraphDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(wireHook, mapstructure.StringToSliceHookFunc(",")),
		ErrorUnused: true,
		Result:      &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	return &doc, nil
}

// wireHook accepts "a.out -> b.in" as shorthand for a WireDocument.
func wireHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(dto.WireDocument{}) {
		return data, nil
	}
	s := data.(string)
	src, dst, ok := strings.Cut(s, "->")
	if !ok {
		return nil, fmt.Errorf("invalid wire %q: want \"<node>.<pin> -> <node>.<pin>\"", s)
	}
	return dto.WireDocument{From: strings.TrimSpace(src), To: strings.TrimSpace(dst)}, nil
}

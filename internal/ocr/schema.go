package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RawResultJSONSchema describes the interchange form of RawResult. Engines
// add their own fields (paragraphs, lines, words); those are allowed.
func RawResultJSONSchema() map[string]any {
	corner := map[string]any{"type": "integer"}
	block := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": []any{"string", "null"}},
			"bbox": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"x0": corner, "y0": corner, "x1": corner, "y1": corner,
				},
				"required": []any{"x0", "y0", "x1", "y1"},
			},
			"confidence": map[string]any{
				"type":    []any{"number", "null"},
				"minimum": 0,
				"maximum": 100,
			},
		},
		"required": []any{"bbox"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":   map[string]any{"type": []any{"string", "null"}},
			"blocks": map[string]any{"type": []any{"array", "null"}, "items": block},
		},
	}
}

var compileRawSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(RawResultJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("raw_result.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("raw_result.json")
})

// DecodeRaw validates data against RawResultJSONSchema and decodes it.
// JSON nulls for text/blocks/confidence decode as absent.
func DecodeRaw(data []byte) (RawResult, error) {
	schema, err := compileRawSchema()
	if err != nil {
		return RawResult{}, fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return RawResult{}, fmt.Errorf("unmarshal raw result: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return RawResult{}, fmt.Errorf("raw result does not match schema: %w", err)
	}
	var raw RawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return RawResult{}, fmt.Errorf("decode raw result: %w", err)
	}
	return raw, nil
}

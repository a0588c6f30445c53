package provider

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/shenprabu/FileReadAI/constants"
)

// BuildExtractionJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// for the normalized extraction payload as a generic map.
func BuildExtractionJSONSchema() map[string]any {
	box := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x":      unitInterval(),
			"y":      unitInterval(),
			"width":  unitInterval(),
			"height": unitInterval(),
		},
		"required": []string{"x", "y", "width", "height"},
	}
	field := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label":       map[string]any{"type": "string"},
			"value":       map[string]any{"type": "string"},
			"type":        map[string]any{"type": "string", "enum": constants.FieldTypesAsStringSlice()},
			"confidence":  unitInterval(),
			"boundingBox": box,
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"formTitle": map[string]any{"type": "string"},
			"fields":    map[string]any{"type": "array", "items": field},
		},
		"required": []string{"fields"},
	}
}

func unitInterval() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}

func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

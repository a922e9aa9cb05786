package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/entity"
)

// BuildRecordJSONSchema returns the schema of one record: exactly the canonical fields,
// each a string.
func BuildRecordJSONSchema() map[string]any {
	names := constants.AsStringSlice()
	props := make(map[string]any, len(names))
	for _, n := range names {
		props[n] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             names,
	}
}

// RecordSchema validates serialized records.
type RecordSchema struct {
	schema *jsonschema.Schema
}

func NewRecordSchema() (*RecordSchema, error) {
	b, err := json.Marshal(BuildRecordJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &RecordSchema{schema: schema}, nil
}

// ValidateJSON checks one serialized record object.
func (s *RecordSchema) ValidateJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := s.schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}

// Validate checks the serialized form of fields.
func (s *RecordSchema) Validate(fields entity.Fields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.ValidateJSON(data)
}

package salon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RecordValidator checks admin payloads before they leave the client.
// Validate expects a complete record; ValidatePartial skips required-field
// checks for partial updates.
type RecordValidator interface {
	Validate(kind EntityKind, record map[string]any) error
	ValidatePartial(kind EntityKind, record map[string]any) error
}

// JSONSchemaValidator compiles per-kind schemas and validates records.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures a full record satisfies the kind schema.
func (v *JSONSchemaValidator) Validate(kind EntityKind, record map[string]any) error {
	return v.validate(kind, record, false)
}

// ValidatePartial validates only the fields present in record.
func (v *JSONSchemaValidator) ValidatePartial(kind EntityKind, record map[string]any) error {
	return v.validate(kind, record, true)
}

func (v *JSONSchemaValidator) validate(kind EntityKind, record map[string]any, partial bool) error {
	schema, err := v.schemaFor(kind, partial)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}
	payload := map[string]any{}
	if record != nil {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("salon: marshal %s record: %w", kind, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("salon: normalize %s record: %w", kind, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("%s record failed validation: %v", kind, err)}
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(kind EntityKind, partial bool) (*jsonschema.Schema, error) {
	key := string(kind)
	if partial {
		key += ".partial"
	}
	v.mu.RLock()
	schema, ok := v.compiled[key]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	doc := kindSchema(kind)
	if doc == nil {
		return nil, nil
	}
	if partial {
		delete(doc, "required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("salon: marshal schema %s: %w", key, err)
	}
	compiler := jsonschema.NewCompiler()
	name := key + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("salon: load schema %s: %w", key, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("salon: compile schema %s: %w", key, err)
	}
	v.mu.Lock()
	v.compiled[key] = compiled
	v.mu.Unlock()
	return compiled, nil
}

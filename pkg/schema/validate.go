package schema

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Schema is a map of parameter names to their expected types.
// Example: {"count": UInt(64), "name": Bytes(), "tags": Array(String())}
type Schema map[string]Type

// Validate checks call arguments against the schema. Extra arguments are
// ignored. The returned *ArgumentsError lists every mismatch, ordered by name.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []*ArgumentError
	for _, name := range sortedKeys(schema) {
		typ := schema[name]
		value, exists := data[name]
		if !exists {
			if _, optional := typ.(*OptionalType); optional {
				continue
			}
			errs = append(errs, &ArgumentError{Name: name, Type: typ.Name(), Reason: "missing"})
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ArgumentError{Name: name, Type: typ.Name(), Reason: err.Error()})
		}
	}

	if len(errs) > 0 {
		return &ArgumentsError{Errors: errs}
	}
	return nil
}

// MarshalYAML encodes the schema as a map of names to ABI type names.
func (s Schema) MarshalYAML() (any, error) {
	if s == nil {
		return nil, nil
	}
	raw := make(map[string]string, len(s))
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		raw[key] = typ.Name()
	}
	return raw, nil
}

// UnmarshalYAML decodes a map of names to ABI type names.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func sortedKeys(s Schema) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

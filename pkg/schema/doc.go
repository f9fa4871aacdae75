// Package schema validates call arguments against ABI parameter types.
//
// Arguments reach debots as JSON values: integers may be numbers or decimal
// and 0x-prefixed strings, bytes are hex, cells are base64. A Schema maps
// parameter names to types and reports every mismatch at once.
//
// Basic usage:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "count": "uint64",
//	    "name":  "bytes",
//	    "tags":  "string[]",
//	})
//
//	err = schema.Validate(s, map[string]any{
//	    "count": "0x10",
//	    "name":  "426f62",
//	    "tags":  []any{"a", "b"},
//	})
//
// Schemas decode from YAML maps of names to type strings, which is how fixture
// files declare function inputs.
package schema

package schema

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/debot/internal/format"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/holiman/uint256"
)

// Type defines the contract for parameter validation.
type Type interface {
	// Name returns the ABI spelling of the type (e.g., "uint64", "bytes[]").
	Name() string
	// Validate checks if a JSON value conforms to this type.
	Validate(value any) error
}

// UIntType validates unsigned integers of a fixed bit size.
type UIntType struct{ bits int }

func (t *UIntType) Name() string { return "uint" + strconv.Itoa(t.bits) }

func (t *UIntType) Validate(value any) error {
	neg, mag, err := number(value)
	if err != nil {
		return err
	}
	if neg && !mag.IsZero() {
		return fmt.Errorf("expected %s, got a negative number", t.Name())
	}
	if mag.BitLen() > t.bits {
		return fmt.Errorf("value does not fit in %s", t.Name())
	}
	return nil
}

// IntType validates two's complement integers of a fixed bit size.
type IntType struct{ bits int }

func (t *IntType) Name() string { return "int" + strconv.Itoa(t.bits) }

func (t *IntType) Validate(value any) error {
	neg, mag, err := number(value)
	if err != nil {
		return err
	}
	limit := new(uint256.Int).Lsh(uint256.NewInt(1), uint(t.bits-1))
	if (neg && mag.Gt(limit)) || (!neg && !mag.Lt(limit)) {
		return fmt.Errorf("value does not fit in %s", t.Name())
	}
	return nil
}

// BoolType validates booleans.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	switch v := value.(type) {
	case bool:
		return nil
	case string:
		if v == "true" || v == "false" {
			return nil
		}
	}
	return fmt.Errorf("expected bool, got %T", value)
}

// StringType validates plain strings.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// BytesType validates hex encoded byte strings.
type BytesType struct{}

func (t *BytesType) Name() string { return "bytes" }

func (t *BytesType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected hex string, got %T", value)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("expected hex string: %w", err)
	}
	return nil
}

// AddressType validates account addresses.
type AddressType struct{}

func (t *AddressType) Name() string { return "address" }

func (t *AddressType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected address, got %T", value)
	}
	_, err := domain.ParseAddress(s)
	return err
}

// CellType validates base64 encoded cells.
type CellType struct{}

func (t *CellType) Name() string { return "cell" }

func (t *CellType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected base64 cell, got %T", value)
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return fmt.Errorf("expected base64 cell: %w", err)
	}
	return nil
}

// ArrayType validates arrays of a specific element type.
type ArrayType struct {
	elemType Type
}

func (t *ArrayType) Name() string {
	return t.elemType.Name() + "[]"
}

func (t *ArrayType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected array, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elemType.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// OptionalType accepts null or a value of the inner type. Optional parameters
// may also be omitted.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string { return "optional(" + t.inner.Name() + ")" }

func (t *OptionalType) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.inner.Validate(value)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// UInt creates an unsigned integer validator of the given bit size.
func UInt(bits int) Type { return &UIntType{bits: bits} }

// Int creates a signed integer validator of the given bit size.
func Int(bits int) Type { return &IntType{bits: bits} }

// Bool creates a boolean validator.
func Bool() Type { return &BoolType{} }

// String creates a string validator.
func String() Type { return &StringType{} }

// Bytes creates a hex bytes validator.
func Bytes() Type { return &BytesType{} }

// Address creates an address validator.
func Address() Type { return &AddressType{} }

// Cell creates a base64 cell validator.
func Cell() Type { return &CellType{} }

// Array creates an array validator for elements of the given type.
func Array(elemType Type) Type {
	return &ArrayType{elemType: elemType}
}

// Optional wraps a type so null and missing values pass.
func Optional(inner Type) Type {
	return &OptionalType{inner: inner}
}

// Custom creates a validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// opaque accepts any value of a type the package does not inspect.
func opaque(name string) Type {
	return Custom(name, func(any) error { return nil })
}

// ParseType converts an ABI type name to a Type.
// Tuples and maps are accepted without inspection.
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)

	if elem, ok := strings.CutSuffix(typeStr, "[]"); ok {
		elemType, err := ParseType(elem)
		if err != nil {
			return nil, err
		}
		return Array(elemType), nil
	}
	if inner, ok := strings.CutPrefix(typeStr, "optional("); ok && strings.HasSuffix(inner, ")") {
		innerType, err := ParseType(strings.TrimSuffix(inner, ")"))
		if err != nil {
			return nil, err
		}
		return Optional(innerType), nil
	}

	switch typeStr {
	case "bool":
		return Bool(), nil
	case "string":
		return String(), nil
	case "bytes":
		return Bytes(), nil
	case "address":
		return Address(), nil
	case "cell":
		return Cell(), nil
	case "varuint16":
		return UInt(120), nil
	case "varuint32":
		return UInt(248), nil
	case "varint16":
		return Int(120), nil
	case "varint32":
		return Int(248), nil
	case "tuple":
		return opaque(typeStr), nil
	}
	if strings.HasPrefix(typeStr, "map(") {
		return opaque(typeStr), nil
	}
	if bits, ok := strings.CutPrefix(typeStr, "uint"); ok {
		n, err := bitSize(bits)
		if err != nil {
			return nil, fmt.Errorf("unsupported type: %s", typeStr)
		}
		return UInt(n), nil
	}
	if bits, ok := strings.CutPrefix(typeStr, "int"); ok {
		n, err := bitSize(bits)
		if err != nil {
			return nil, fmt.Errorf("unsupported type: %s", typeStr)
		}
		return Int(n), nil
	}
	return nil, fmt.Errorf("unsupported type: %s", typeStr)
}

// ParseTypeMap converts a map of parameter names to ABI type names into a Schema.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

func bitSize(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 256 {
		return 0, fmt.Errorf("bit size %d out of range", n)
	}
	return n, nil
}

// number splits a JSON integer into sign and magnitude.
func number(value any) (bool, *uint256.Int, error) {
	switch v := value.(type) {
	case int:
		return signed(int64(v))
	case int64:
		return signed(v)
	case uint64:
		return false, uint256.NewInt(v), nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt64 {
			return false, nil, fmt.Errorf("expected integer, got %v", v)
		}
		return signed(int64(v))
	case string:
		s := strings.TrimSpace(v)
		neg := strings.HasPrefix(s, "-")
		s = strings.TrimPrefix(s, "-")
		var mag *uint256.Int
		var err error
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			mag, err = format.ParseHexNumber(s)
		} else {
			mag, err = uint256.FromDecimal(s)
		}
		if err != nil || s == "" {
			return false, nil, fmt.Errorf("expected integer, got %q", v)
		}
		return neg, mag, nil
	}
	return false, nil, fmt.Errorf("expected integer, got %T", value)
}

func signed(n int64) (bool, *uint256.Int, error) {
	if n < 0 {
		return true, uint256.NewInt(uint64(-n)), nil
	}
	return false, uint256.NewInt(uint64(n)), nil
}

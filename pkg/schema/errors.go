package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ArgumentError is a single argument that does not match its parameter type.
type ArgumentError struct {
	Name   string // parameter name
	Type   string // ABI type, empty when the parameter is unknown
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("argument %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("argument %q (%s): %s", e.Name, e.Type, e.Reason)
}

// ArgumentsError collects every mismatch found in one call.
type ArgumentsError struct {
	Errors []*ArgumentError
}

func (e *ArgumentsError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid arguments: %s", len(e.Errors), strings.Join(parts, "; "))
}

// Mismatches returns the individual argument errors carried by err, if any.
func Mismatches(err error) []*ArgumentError {
	var args *ArgumentsError
	if errors.As(err, &args) {
		return args.Errors
	}
	return nil
}

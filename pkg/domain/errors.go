package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrContextNotFound is returned when a transition targets an id absent from the graph.
	ErrContextNotFound = errors.New("context not found")

	// ErrUnsupportedAction is returned when an action carries an unknown kind code.
	ErrUnsupportedAction = errors.New("unsupported action type")

	// ErrTargetAddressUndefined is returned when a target call is requested before
	// the debot declared a target address.
	ErrTargetAddressUndefined = errors.New("target address is undefined")

	// ErrTargetABIUndefined is returned when a target call is requested before
	// the debot declared a target ABI.
	ErrTargetABIUndefined = errors.New("target abi is undefined")

	// ErrRoutineCallbackMissing is returned when a CallEngine action has no setter.
	ErrRoutineCallbackMissing = errors.New("routine callback is not specified")

	// ErrRoutineNotFound is returned by routine registries for unknown names.
	ErrRoutineNotFound = errors.New("routine not found")

	// ErrInstantSwitchLimit is returned when instant transitions exceed the configured ceiling.
	ErrInstantSwitchLimit = errors.New("instant switch limit exceeded")

	// ErrAccountStateMissing is returned when a state-bearing call returns no account snapshot.
	ErrAccountStateMissing = errors.New("account state missing in call result")

	// ErrMalformedOutput is returned when a debot function returns data of the wrong shape.
	ErrMalformedOutput = errors.New("malformed debot output")

	// ErrCheckpointNotFound is returned when no checkpoint exists for a session.
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrNestedSessionUnsupported is returned by front ends that cannot run nested debots.
	ErrNestedSessionUnsupported = errors.New("nested debot sessions are not supported")
)

// CallError is the structured failure reported by a call service.
type CallError struct {
	Message string
	Code    int
	Data    map[string]any
}

func (e *CallError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	}
	return e.Message
}

// InstantSwitchError reports a chain of instant transitions longer than Limit.
type InstantSwitchError struct {
	Limit int
	State StateID
}

func (e *InstantSwitchError) Error() string {
	return fmt.Sprintf("instant switch limit of %d exceeded while entering context %s", e.Limit, e.State)
}

func (e *InstantSwitchError) Unwrap() error {
	return ErrInstantSwitchLimit
}

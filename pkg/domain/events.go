package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter  EventType = "state_enter"
	EventActionStart EventType = "action_start"
	EventActionDone  EventType = "action_done"
	EventCall        EventType = "call"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StateEvent represents entry into a context or the exit sentinel.
type StateEvent struct {
	EventBase
	From    StateID `json:"from"`
	To      StateID `json:"to"`
	Instant bool    `json:"instant,omitempty"`
}

// ActionEvent represents the execution of one action.
type ActionEvent struct {
	EventBase
	Action   string        `json:"action"`
	Kind     string        `json:"kind"`
	Instant  bool          `json:"instant,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// CallEvent represents a call issued through the call service.
type CallEvent struct {
	EventBase
	Function string        `json:"function"`
	Target   bool          `json:"target,omitempty"`
	Submit   bool          `json:"submit,omitempty"`
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStateEnter  func(context.Context, *StateEvent)
	OnActionStart func(context.Context, *ActionEvent)
	OnActionDone  func(context.Context, *ActionEvent)
	OnCall        func(context.Context, *CallEvent)
}

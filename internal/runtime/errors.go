package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/aretw0/debot/internal/format"
	"github.com/aretw0/debot/pkg/domain"
)

// CodeContractException is the call-service code for a contract that threw.
const CodeContractException = 3025

// ActionError wraps a failure raised while executing an action.
// The message is the cause's message so it reads naturally in the failure log.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return e.Err.Error()
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// CallFailure is a classified call-service failure with a user-facing message.
type CallFailure struct {
	Message string
	Err     error
}

func (e *CallFailure) Error() string {
	return e.Message
}

func (e *CallFailure) Unwrap() error {
	return e.Err
}

// classify turns a call-service failure into a user-facing error.
// Malformed arguments become "invalid parameter"; contract exceptions are
// described by the debot's getErrorDescription when it can.
func (e *Engine) classify(ctx context.Context, err error) error {
	var callErr *domain.CallError
	if !errors.As(err, &callErr) {
		return err
	}

	switch {
	case strings.Contains(callErr.Message, "Wrong data format"):
		return &CallFailure{Message: "invalid parameter", Err: err}
	case callErr.Code == CodeContractException:
		if exitCode, ok := exitCodeOf(callErr.Data); ok {
			if desc, ok := e.describeError(ctx, exitCode); ok {
				return &CallFailure{Message: desc, Err: err}
			}
		}
	}
	return &CallFailure{Message: callErr.Message, Err: err}
}

func (e *Engine) describeError(ctx context.Context, exitCode int64) (string, bool) {
	res, err := e.runRaw(ctx, callSpec{
		function:  fnGetErrorDescription,
		args:      map[string]any{"error": exitCode},
		withState: true,
	})
	if err != nil {
		e.logger.Debug("error description lookup failed", "exit_code", exitCode, "err", err)
		return "", false
	}
	raw, ok := res.Output["desc"].(string)
	if !ok {
		return "", false
	}
	desc, err := format.HexToUTF8(raw)
	if err != nil {
		return "", false
	}
	return desc, true
}

func exitCodeOf(data map[string]any) (int64, bool) {
	switch v := data["exit_code"].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}

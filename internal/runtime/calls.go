package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/debot/internal/dto"
	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
)

// Well-known debot functions.
const (
	fnFetch               = "fetch"
	fnGetVersion          = "getVersion"
	fnGetDebotOptions     = "getDebotOptions"
	fnGetErrorDescription = "getErrorDescription"
)

type callSpec struct {
	target    bool
	function  string
	args      map[string]any
	withState bool
	emulate   bool
}

// run performs a simulated call against the debot or its target and
// classifies call-service failures.
func (e *Engine) run(ctx context.Context, spec callSpec) (ports.LocalResult, error) {
	res, err := e.runRaw(ctx, spec)
	if err != nil {
		e.logger.Error("call failed", "function", spec.function, "target", spec.target, "err", err)
		return ports.LocalResult{}, e.classify(ctx, err)
	}
	return res, nil
}

func (e *Engine) runRaw(ctx context.Context, spec callSpec) (ports.LocalResult, error) {
	addr, abi := e.addr, e.abi
	if spec.target {
		if e.targetAddr == nil {
			return ports.LocalResult{}, domain.ErrTargetAddressUndefined
		}
		if e.targetABI == nil {
			return ports.LocalResult{}, domain.ErrTargetABIUndefined
		}
		addr, abi = *e.targetAddr, *e.targetABI
	}

	args := spec.args
	if args == nil {
		args = map[string]any{}
	}
	call := ports.LocalCall{
		Address:  addr,
		ABI:      abi,
		Function: spec.function,
		Args:     args,
		Emulate:  spec.emulate,
	}
	if spec.withState {
		call.State = e.session.Snapshot()
	}

	e.logger.Debug("running", "function", spec.function, "address", string(addr), "with_state", spec.withState)
	start := time.Now()
	res, err := e.service.RunLocal(ctx, call)
	e.emitCall(ctx, spec.function, spec.target, false, time.Since(start), err)
	return res, err
}

// runDebot calls a debot function emulating a real transaction and adopts the
// resulting account snapshot.
func (e *Engine) runDebot(ctx context.Context, function string, args map[string]any) (map[string]any, error) {
	res, err := e.run(ctx, callSpec{function: function, args: args, withState: true, emulate: true})
	if err != nil {
		return nil, err
	}
	if res.Account == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountStateMissing, function)
	}
	e.session.Replace(res.Account)
	return res.Output, nil
}

// runGet calls a read-only debot getter against the cached snapshot.
func (e *Engine) runGet(ctx context.Context, function string) (ports.LocalResult, error) {
	return e.run(ctx, callSpec{function: function, withState: true})
}

// loadState fetches the debot account through getVersion and refreshes options.
func (e *Engine) loadState(ctx context.Context) error {
	res, err := e.run(ctx, callSpec{function: fnGetVersion, emulate: true})
	if err != nil {
		return fmt.Errorf("failed to fetch debot state: %w", err)
	}
	version, err := dto.DecodeVersion(res.Output)
	if err != nil {
		return err
	}
	if res.Account == nil {
		return fmt.Errorf("%w: %s", domain.ErrAccountStateMissing, fnGetVersion)
	}
	e.session.Replace(res.Account)
	e.browser.Log(ctx, version.String())
	return e.updateOptions(ctx)
}

// updateOptions re-reads getDebotOptions and replaces every field whose bit is set.
func (e *Engine) updateOptions(ctx context.Context) error {
	res, err := e.runGet(ctx, fnGetDebotOptions)
	if err != nil {
		return err
	}
	opts, err := dto.DecodeOptions(res.Output)
	if err != nil {
		return err
	}
	if opts.ABI != nil {
		e.abi = *opts.ABI
	}
	if opts.TargetABI != nil {
		e.targetABI = opts.TargetABI
	}
	if opts.TargetAddr != nil {
		e.targetAddr = opts.TargetAddr
	}
	return nil
}

// runGetMethod calls a get-method of the target and hands its output to the
// action's result handler.
func (e *Engine) runGetMethod(ctx context.Context, act domain.Action, method string, args map[string]any) error {
	handler, ok := act.ResultHandler()
	if !ok {
		return fmt.Errorf("%w: get-method action %q has no result handler", domain.ErrMalformedOutput, method)
	}
	if err := e.updateOptions(ctx); err != nil {
		return err
	}
	res, err := e.run(ctx, callSpec{target: true, function: method, args: args})
	if err != nil {
		return err
	}
	_, err = e.runDebot(ctx, handler, res.Output)
	return err
}

// runSendMsg asks the debot for a message and submits it.
func (e *Engine) runSendMsg(ctx context.Context, function string, args map[string]any, keys *domain.KeyPair) (any, error) {
	output, err := e.runDebot(ctx, function, args)
	if err != nil {
		return nil, err
	}
	msg, err := dto.DecodeMessage(output)
	if err != nil {
		return nil, err
	}

	abi := e.abi
	if msg.Dest != e.addr {
		if e.targetABI == nil {
			return nil, domain.ErrTargetABIUndefined
		}
		abi = *e.targetABI
	}

	body, err := e.service.DecodeInputBody(ctx, abi, msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode msg body: %w", err)
	}
	e.logger.Debug("calling", "function", body.Function, "address", string(msg.Dest))
	return e.callTarget(ctx, msg.Dest, abi, body.Function, body.Args, keys, msg.State)
}

// callTarget builds, optionally signs and submits an external message.
func (e *Engine) callTarget(ctx context.Context, dest domain.Address, abi, function string, args map[string]any, keys *domain.KeyPair, state []byte) (any, error) {
	msg, err := e.service.CreateMessage(ctx, dest, abi, function, args, keys)
	if err != nil {
		e.logger.Error("failed to create message", "function", function, "err", err)
		return nil, errors.New("failed to create message")
	}
	if state != nil {
		msg, err = e.service.AttachInitialState(ctx, msg, state)
		if err != nil {
			return nil, fmt.Errorf("unable to attach initial state: %w", err)
		}
	}

	e.browser.Log(ctx, "sending message "+msg.ID)
	start := time.Now()
	res, err := e.service.SubmitMessage(ctx, msg, abi, function)
	e.emitCall(ctx, function, dest != e.addr, true, time.Since(start), err)
	if err != nil {
		e.logger.Error("message processing failed", "function", function, "err", err)
		return nil, e.classify(ctx, err)
	}
	return res, nil
}

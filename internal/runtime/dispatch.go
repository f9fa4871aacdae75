package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/debot/internal/dto"
	"github.com/aretw0/debot/internal/format"
	"github.com/aretw0/debot/pkg/domain"
)

// handleAction executes act according to its kind and returns the follow-up
// actions it produced. Only RunAction may produce follow-ups.
func (e *Engine) handleAction(ctx context.Context, act domain.Action, instant bool) ([]domain.Action, error) {
	start := time.Now()
	e.emitActionStart(ctx, act, instant)
	e.logger.Debug("dispatching action", "action", act.Name, "kind", domain.KindName(act.Kind), "instant", instant)

	follow, err := e.dispatch(ctx, act)
	if err != nil {
		err = &ActionError{Action: act.Name, Err: err}
	}
	e.emitActionDone(ctx, act, instant, time.Since(start), err)
	return follow, err
}

func (e *Engine) dispatch(ctx context.Context, act domain.Action) ([]domain.Action, error) {
	switch k := act.Kind.(type) {
	case domain.Empty, domain.Goto:
		return nil, nil
	case domain.RunAction:
		return e.runAction(ctx, act)
	case domain.RunMethod:
		return nil, e.runMethod(ctx, act, k)
	case domain.SendMsg:
		return nil, e.sendMsg(ctx, act)
	case domain.Invoke:
		return nil, e.invoke(ctx, act)
	case domain.Print:
		return nil, e.print(ctx, act, k)
	case domain.CallEngine:
		return nil, e.callEngine(ctx, act, k)
	default:
		e.browser.Log(ctx, "unsupported action type")
		return nil, fmt.Errorf("%w: %d", domain.ErrUnsupportedAction, act.Kind.Code())
	}
}

func (e *Engine) runAction(ctx context.Context, act domain.Action) ([]domain.Action, error) {
	args, err := e.queryActionArgs(ctx, act)
	if err != nil {
		return nil, err
	}
	output, err := e.runDebot(ctx, act.Name, args)
	if err != nil {
		return nil, err
	}
	raw, ok := output["actions"]
	if !ok || raw == nil {
		return nil, nil
	}
	return dto.DecodeActions(raw)
}

func (e *Engine) runMethod(ctx context.Context, act domain.Action, k domain.RunMethod) error {
	if k.Method == "" {
		return fmt.Errorf("%w: get-method action %q has no func attribute", domain.ErrMalformedOutput, act.Name)
	}
	var args map[string]any
	if k.Getter != "" {
		out, err := e.runDebot(ctx, k.Getter, nil)
		if err != nil {
			return err
		}
		args = out
	}
	return e.runGetMethod(ctx, act, k.Method, args)
}

func (e *Engine) sendMsg(ctx context.Context, act domain.Action) error {
	keys, err := e.keysFor(ctx, act)
	if err != nil {
		return err
	}
	var args map[string]any
	if act.HasMisc() {
		args = map[string]any{"misc": act.Misc}
	}
	result, err := e.runSendMsg(ctx, act.Name, args, keys)
	if err != nil {
		return err
	}
	e.browser.Log(ctx, "Transaction succeeded.")
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode transaction result: %w", err)
		}
		e.browser.Log(ctx, "Result: "+string(data))
	}
	return nil
}

func (e *Engine) invoke(ctx context.Context, act domain.Action) error {
	output, err := e.runDebot(ctx, act.Name, nil)
	if err != nil {
		return err
	}
	addr, nested, err := dto.DecodeInvoke(output)
	if err != nil {
		return err
	}
	e.logger.Debug("invoking debot", "address", string(addr), "action", nested.Name)
	return e.browser.InvokeDebot(ctx, addr, nested)
}

func (e *Engine) print(ctx context.Context, act domain.Action, k domain.Print) error {
	label := act.Name
	if k.FormatArgs != "" {
		var args map[string]any
		if act.HasMisc() {
			args = map[string]any{"misc": act.Misc}
		}
		params, err := e.runDebot(ctx, k.FormatArgs, args)
		if err != nil {
			return err
		}
		label = format.Render(act.Name, params)
	}
	e.browser.Log(ctx, label)
	return nil
}

func (e *Engine) callEngine(ctx context.Context, act domain.Action, k domain.CallEngine) error {
	args := act.Desc
	if k.Getter != "" {
		out, err := e.runDebot(ctx, k.Getter, nil)
		if err != nil {
			return err
		}
		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to encode routine arguments: %w", err)
		}
		args = string(data)
	}
	keys, err := e.keysFor(ctx, act)
	if err != nil {
		return err
	}

	res, err := e.routines.Call(ctx, act.Name, args, keys)
	if err != nil {
		return err
	}
	if k.Setter == "" {
		return domain.ErrRoutineCallbackMissing
	}
	_, err = e.runDebot(ctx, k.Setter, map[string]any{"arg1": res})
	return err
}

// keysFor asks the front end for a key pair when the action requires a user signature.
func (e *Engine) keysFor(ctx context.Context, act domain.Action) (*domain.KeyPair, error) {
	if !act.SignByUser() {
		return nil, nil
	}
	kp, err := e.browser.LoadKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load keys: %w", err)
	}
	return &kp, nil
}

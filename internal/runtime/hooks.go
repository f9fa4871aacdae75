package runtime

import (
	"context"
	"time"

	"github.com/aretw0/debot/pkg/domain"
)

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: e.sessionID}
}

func (e *Engine) emitStateEnter(ctx context.Context, from, to domain.StateID, instant bool) {
	if e.hooks.OnStateEnter == nil {
		return
	}
	e.hooks.OnStateEnter(ctx, &domain.StateEvent{
		EventBase: e.base(domain.EventStateEnter),
		From:      from,
		To:        to,
		Instant:   instant,
	})
}

func (e *Engine) emitActionStart(ctx context.Context, act domain.Action, instant bool) {
	if e.hooks.OnActionStart == nil {
		return
	}
	e.hooks.OnActionStart(ctx, &domain.ActionEvent{
		EventBase: e.base(domain.EventActionStart),
		Action:    act.Name,
		Kind:      domain.KindName(act.Kind),
		Instant:   instant,
	})
}

func (e *Engine) emitActionDone(ctx context.Context, act domain.Action, instant bool, d time.Duration, err error) {
	if e.hooks.OnActionDone == nil {
		return
	}
	evt := &domain.ActionEvent{
		EventBase: e.base(domain.EventActionDone),
		Action:    act.Name,
		Kind:      domain.KindName(act.Kind),
		Instant:   instant,
		Duration:  d,
		IsError:   err != nil,
	}
	if err != nil {
		evt.Error = err.Error()
	}
	e.hooks.OnActionDone(ctx, evt)
}

func (e *Engine) emitCall(ctx context.Context, function string, target, submit bool, d time.Duration, err error) {
	if e.hooks.OnCall == nil {
		return
	}
	e.hooks.OnCall(ctx, &domain.CallEvent{
		EventBase: e.base(domain.EventCall),
		Function:  function,
		Target:    target,
		Submit:    submit,
		Duration:  d,
		IsError:   err != nil,
	})
}

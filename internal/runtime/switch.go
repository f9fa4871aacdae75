package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/debot/pkg/domain"
)

// switchState moves the session to the given state and enters it.
// Entering a context may chain through instant actions; each hop re-enters the
// newly selected context without touching the previous state.
func (e *Engine) switchState(ctx context.Context, to domain.StateID, force bool) error {
	to = to.Resolve(e.current, e.previous)
	e.logger.Debug("switching state", "to", to.String(), "force", force)

	if to.IsExit() {
		e.exit(ctx, false)
		return nil
	}
	if to == e.current && !force {
		return nil
	}

	e.previous = e.current
	e.current = to

	from := e.previous
	instant := false
	hops := 0
	for {
		if e.current.IsExit() {
			e.exit(ctx, true)
			return nil
		}

		c, ok := e.graph.Find(e.current)
		if !ok {
			e.logger.Warn("context not found", "state", e.current.String())
			e.browser.Log(ctx, fmt.Sprintf("Debot context #%s not found. Exit.", e.current))
			e.exit(ctx, instant)
			return nil
		}

		e.browser.SwitchState(ctx, e.current)
		e.emitStateEnter(ctx, from, e.current, instant)
		e.browser.Log(ctx, c.Desc)

		moved, err := e.enterContext(ctx, c)
		if err != nil {
			return err
		}
		if !moved {
			return nil
		}

		hops++
		if e.maxInstantSwitches > 0 && hops > e.maxInstantSwitches {
			return &domain.InstantSwitchError{Limit: e.maxInstantSwitches, State: e.current}
		}
		from = c.State()
		instant = true
	}
}

// exit marks the session finished and tells the front end.
func (e *Engine) exit(ctx context.Context, instant bool) {
	if !e.current.IsExit() {
		e.previous = e.current
		e.current = domain.StateExit
	}
	e.browser.SwitchState(ctx, domain.StateExit)
	e.emitStateEnter(ctx, e.previous, domain.StateExit, instant)
}

// enterContext processes the actions of c in order.
// Instant actions run immediately, CallEngine actions run silently, the rest
// are presented to the user. Follow-up actions returned by a handler are
// queued behind the action that produced them.
// It reports true when an instant action selected another state.
func (e *Engine) enterContext(ctx context.Context, c domain.Context) (bool, error) {
	for _, root := range c.Actions {
		queue := []domain.Action{root}
		for len(queue) > 0 {
			act := queue[0]
			queue = queue[1:]

			switch {
			case act.Instant:
				if act.Desc != "" {
					e.browser.Log(ctx, act.Desc)
				}
				follow, err := e.handleAction(ctx, act, true)
				if err != nil {
					return false, err
				}
				queue = append(queue, follow...)

				to := act.To.Resolve(e.current, e.previous)
				if to != e.current {
					e.current = to
					return true, nil
				}
			case act.IsEngineCall():
				follow, err := e.handleAction(ctx, act, false)
				if err != nil {
					return false, err
				}
				queue = append(queue, follow...)
			default:
				e.browser.ShowAction(ctx, act)
			}
		}
	}
	return false, nil
}

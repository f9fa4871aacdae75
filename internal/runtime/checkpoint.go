package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/debot/pkg/domain"
)

// saveCheckpoint persists the session position. Failures are logged, not returned.
func (e *Engine) saveCheckpoint(ctx context.Context) {
	if e.store == nil {
		return
	}
	cp := &domain.Checkpoint{
		SessionID: e.sessionID,
		Address:   e.addr,
		Current:   e.current,
		Previous:  e.previous,
		State:     e.session.Snapshot().Clone(),
		UpdatedAt: time.Now(),
	}
	if err := e.store.Save(ctx, cp); err != nil {
		e.logger.Warn("failed to save checkpoint", "err", err)
	}
}

// Resume restores a checkpointed session: it refreshes the graph and options,
// reinstates the saved account snapshot and re-enters the saved context.
func (e *Engine) Resume(ctx context.Context) error {
	if e.store == nil {
		return errors.New("resume requires a checkpoint store")
	}
	cp, err := e.store.Load(ctx, e.sessionID)
	if err != nil {
		return err
	}
	if cp.Address != e.addr {
		return fmt.Errorf("checkpoint %s belongs to debot %s", cp.SessionID, cp.Address)
	}

	graph, err := e.fetchGraph(ctx)
	if err != nil {
		return err
	}
	e.graph = graph
	e.session.Replace(cp.State)
	e.current = cp.Previous
	e.previous = cp.Previous
	e.logger.Info("resuming session", "state", cp.Current.String())

	err = e.switchState(ctx, cp.Current, true)
	e.saveCheckpoint(ctx)
	return err
}

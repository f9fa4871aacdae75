package ports

import (
	"context"
	"time"

	"github.com/aretw0/debot/pkg/domain"
)

// CheckpointStore persists session checkpoints so a session can be resumed.
type CheckpointStore interface {
	// Save persists the checkpoint under its session ID.
	Save(ctx context.Context, cp *domain.Checkpoint) error

	// Load retrieves the checkpoint for a session ID.
	// Returns domain.ErrCheckpointNotFound if none exists.
	Load(ctx context.Context, sessionID string) (*domain.Checkpoint, error)

	// Delete removes the checkpoint for a session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the session IDs with a stored checkpoint.
	List(ctx context.Context) ([]string, error)
}

// UnlockFunc releases a lock acquired through a SessionLocker.
type UnlockFunc func(ctx context.Context) error

// SessionLocker guards a session against concurrent front ends.
type SessionLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

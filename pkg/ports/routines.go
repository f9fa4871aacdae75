package ports

import (
	"context"

	"github.com/aretw0/debot/pkg/domain"
)

// RoutineRegistry executes named local routines for CallEngine actions.
// Unknown names must fail with an error wrapping domain.ErrRoutineNotFound.
type RoutineRegistry interface {
	Call(ctx context.Context, name, args string, keys *domain.KeyPair) (string, error)
}

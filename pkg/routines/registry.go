package routines

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/ports"
)

// Routine defines the signature for a routine implementation.
// It receives the textual argument and an optional key pair, and returns text.
type Routine func(ctx context.Context, args string, keys *domain.KeyPair) (string, error)

// Registry manages the available routines.
type Registry struct {
	mu       sync.RWMutex
	routines map[string]Routine
}

var _ ports.RoutineRegistry = (*Registry)(nil)

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		routines: make(map[string]Routine),
	}
}

// NewDefault creates a registry with the built-in routines registered.
func NewDefault(querier ports.AccountQuerier) *Registry {
	r := NewRegistry()
	r.Register(NameConvertTokens, ConvertTokens)
	r.Register(NameGetBalance, GetBalance(querier))
	r.Register(NameLoadBocFromFile, LoadBocFromFile)
	return r
}

// Register adds a routine to the registry.
// If a routine with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Routine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routines[name] = fn
}

// Names returns the registered routine names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.routines))
	for name := range r.routines {
		names = append(names, name)
	}
	return names
}

// Call looks up a routine by name and executes it.
func (r *Registry) Call(ctx context.Context, name, args string, keys *domain.KeyPair) (string, error) {
	r.mu.RLock()
	fn, ok := r.routines[name]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrRoutineNotFound, name)
	}

	return fn(ctx, args, keys)
}
